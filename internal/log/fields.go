package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOwnerID    = "owner_id"
	FieldRecordID   = "record_id"
	FieldAmount     = "amount_cents"
	FieldCategory   = "category"
	FieldKind       = "kind"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentStore   = "store"
	ComponentHub     = "hub"
	ComponentLedger  = "ledger"
	ComponentAMQP    = "amqp"
	ComponentExport  = "export"
	ComponentBackend = "backend"
)
