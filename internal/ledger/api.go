package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evidify/platform/internal/shared/errors"
)

// Handler provides HTTP handlers for the session event ledger.
type Handler struct {
	ledger *Ledger
}

// NewHandler creates a new ledger handler.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// Routes registers the ledger routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{sessionID}/events", h.AppendEvent)
	r.Get("/{sessionID}/events", h.ListEvents)
	r.Get("/{sessionID}/verify", h.VerifyChain)

	return r
}

// appendRequest is the append payload.
type appendRequest struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// AppendEvent appends one workflow event to a session chain.
func (h *Handler) AppendEvent(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	entry, err := h.ledger.Append(r.Context(), chi.URLParam(r, "sessionID"), req.Type, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// ListEvents returns the full chain for a session.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.Entries(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"total": len(entries),
	})
}

// VerifyChain verifies a session chain and reports violations.
func (h *Handler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.Verify(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
