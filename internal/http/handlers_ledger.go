package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type recordJSON struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	OwnerID     string    `json:"owner_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type snapshotJSON struct {
	Records      []recordJSON `json:"records"`
	Balance      string       `json:"balance"`
	BalanceCents int64        `json:"balance_cents"`
}

func toSnapshotJSON(records []core.Record) snapshotJSON {
	out := snapshotJSON{Records: make([]recordJSON, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, recordJSON{
			ID:          r.ID,
			Amount:      r.Amount.Format(),
			AmountCents: r.Amount.Cents,
			Category:    string(r.Category),
			Kind:        string(r.Kind),
			OwnerID:     r.OwnerID,
			OccurredAt:  r.OccurredAt,
		})
	}
	balance := core.ComputeBalance(records)
	out.Balance = balance.Format()
	out.BalanceCents = balance.Cents
	return out
}

type createTransactionRequest struct {
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		records, err := s.lister.ListByOwner(r.Context(), sess.Identity.UID)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to list transactions",
				log.FieldOwnerID, sess.Identity.UID,
				log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to list transactions")
			return
		}
		writeJSON(w, http.StatusOK, toSnapshotJSON(records))

	case http.MethodPost:
		var req createTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cents, err := core.ParseAmountToCents(req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}

		// OwnerID always comes from the session, never the payload, so a
		// caller cannot write into another identity's partition.
		rec := core.Record{
			Amount:     core.Money{Cents: cents},
			Category:   core.Category(req.Category),
			Kind:       core.Kind(req.Kind),
			OwnerID:    sess.Identity.UID,
			OccurredAt: time.Now().UTC(),
		}
		if err := rec.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		id, err := s.docs.Create(r.Context(), rec)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to create transaction",
				log.FieldOwnerID, sess.Identity.UID,
				log.FieldAmount, rec.Amount.Cents,
				log.FieldCategory, string(rec.Category),
				log.FieldKind, string(rec.Kind),
				log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to create transaction")
			return
		}

		s.logger.InfoContext(r.Context(), "Transaction created",
			log.FieldRecordID, id,
			log.FieldOwnerID, sess.Identity.UID,
			log.FieldAmount, rec.Amount.Cents,
			log.FieldCategory, string(rec.Category),
			log.FieldKind, string(rec.Kind))
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
