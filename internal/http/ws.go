package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fintrack/internal/log"
)

type wsMessage struct {
	Type string `json:"type"`
	snapshotJSON
	Error string `json:"error,omitempty"`
}

// handleLedgerStream upgrades to a WebSocket and streams full snapshots
// of the session owner's ledger. The stream ends when the client
// disconnects, the subscription fails, or the session is revoked.
func (s *Server) handleLedgerStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sub, err := s.docs.Subscribe(r.Context(), sess.Identity.UID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to open subscription",
			log.FieldOwnerID, sess.Identity.UID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to open subscription")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		s.logger.ErrorContext(r.Context(), "WebSocket upgrade failed", log.FieldError, err)
		return
	}
	defer conn.Close()

	s.logger.Info("Ledger stream opened", log.FieldOwnerID, sess.Identity.UID)

	// Drain the read side so client close frames are processed; any read
	// error means the peer is gone.
	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer sub.Close()
	for {
		select {
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				if err := sub.Err(); err != nil {
					conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
					conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
				}
				s.logger.Info("Ledger stream ended", log.FieldOwnerID, sess.Identity.UID)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteJSON(wsMessage{Type: "snapshot", snapshotJSON: toSnapshotJSON(snapshot)}); err != nil {
				s.logger.Warn("Snapshot write failed",
					log.FieldOwnerID, sess.Identity.UID,
					log.FieldError, err)
				return
			}

		case <-sess.Done():
			// Session revoked: no further delivery may be observed.
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session revoked"))
			s.logger.Info("Ledger stream closed: session revoked", log.FieldOwnerID, sess.Identity.UID)
			return

		case <-peerGone:
			return
		}
	}
}
