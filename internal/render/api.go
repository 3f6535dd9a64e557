package render

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evidify/platform/internal/packet"
	"github.com/evidify/platform/internal/shared/errors"
	"github.com/evidify/platform/internal/shared/metrics"
)

// Handler serves report renditions of stored packets.
type Handler struct {
	store packet.Store
}

// NewHandler creates a new report handler.
func NewHandler(store packet.Store) *Handler {
	return &Handler{store: store}
}

// Routes registers the report routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{packetID}", h.GetReport)

	return r
}

// GetReport renders a stored packet in the requested format. The format
// query parameter selects narrative, html, or pdf; it defaults to narrative.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "packetID"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "narrative":
		metrics.ReportRendered("narrative")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(Narrative(p)))

	case "html":
		doc, err := HTML(p)
		if err != nil {
			writeError(w, errors.Wrap(err, "failed to render report"))
			return
		}
		metrics.ReportRendered("html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(doc))

	case "pdf":
		var buf bytes.Buffer
		if err := PDF(p, &buf); err != nil {
			writeError(w, errors.Wrap(err, "failed to render report"))
			return
		}
		metrics.ReportRendered("pdf")
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+p.ID+`.pdf"`)
		w.Write(buf.Bytes())

	default:
		writeError(w, errors.BadRequest("unsupported format: "+format))
	}
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
