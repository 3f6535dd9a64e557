package packet

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evidify/platform/internal/ehr"
	"github.com/evidify/platform/internal/ledger"
	"github.com/evidify/platform/internal/shared/errors"
	"github.com/evidify/platform/internal/shared/metrics"
	"github.com/evidify/platform/internal/tsa"
)

// Handler provides HTTP handlers for packet generation and retrieval.
type Handler struct {
	gen      *Generator
	store    Store
	sessions *ledger.Ledger // optional, enables from-session generation
	attestor *tsa.Attestor  // optional, attests chain tails
	exporter *ehr.Exporter  // optional, best-effort
}

// NewHandler creates a new packet handler. sessions, attestor and exporter
// may be nil when the corresponding integration is not configured.
func NewHandler(gen *Generator, store Store, sessions *ledger.Ledger, attestor *tsa.Attestor, exporter *ehr.Exporter) *Handler {
	return &Handler{gen: gen, store: store, sessions: sessions, attestor: attestor, exporter: exporter}
}

// Routes registers the packet routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.GeneratePacket)
	r.Get("/{packetID}", h.GetPacket)
	r.Get("/", h.ListByCase)

	if h.sessions != nil {
		r.Post("/from-session/{sessionID}", h.GenerateFromSession)
	}

	return r
}

// GeneratePacket runs the pipeline on a submitted session snapshot and
// persists the resulting packet.
func (h *Handler) GeneratePacket(w http.ResponseWriter, r *http.Request) {
	var in GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	h.generate(w, r, in)
}

// GenerateFromSession runs the pipeline against a session recorded in the
// event ledger. The chain descriptor and event log come from the ledger
// itself; any chain or checkpoint data in the request body is overwritten.
// The chain tail is attested just before generation so the packet carries a
// fresh checkpoint.
func (h *Handler) GenerateFromSession(w http.ResponseWriter, r *http.Request) {
	var in GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	chain, events, err := h.sessions.Descriptor(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	in.Snapshot.SessionID = sessionID
	in.Snapshot.Chain = chain
	in.Snapshot.Events = events
	in.Checkpoints = nil
	if h.attestor != nil {
		in.Checkpoints = h.attestor.CheckpointChain(r.Context(), chain)
	}

	h.generate(w, r, in)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, in GenerateInput) {
	started := time.Now()
	p, err := h.gen.Generate(in)
	if err != nil {
		metrics.PacketGenerationFailed()
		writeError(w, err)
		return
	}
	metrics.ObservePacketGeneration(time.Since(started))

	if err := h.store.Save(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	metrics.PacketGenerated(string(p.Executive.LiabilityLevel), string(p.Compliance.Status))

	if h.exporter != nil {
		// EHR export is best-effort: a reporting-table failure never blocks
		// packet generation.
		go h.exporter.ExportSummary(ehr.PacketSummary{
			PacketID:        p.ID,
			CaseID:          p.CaseID,
			SessionID:       p.SessionID,
			GeneratedAt:     p.GeneratedAt,
			LiabilityLevel:  string(p.Executive.LiabilityLevel),
			Compliance:      string(p.Compliance.Status),
			DifficultyScore: p.Difficulty.CompositeScore,
			ChainStatus:     string(p.Verification.Status),
		})
	}

	writeJSON(w, http.StatusCreated, p)
}

// GetPacket returns a stored packet by id.
func (h *Handler) GetPacket(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "packetID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListByCase lists packet summaries for a case.
func (h *Handler) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		writeError(w, errors.BadRequest("case_id is required"))
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	summaries, err := h.store.ListByCase(r.Context(), caseID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  summaries,
		"total": len(summaries),
	})
}

// --- Helpers ---

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
