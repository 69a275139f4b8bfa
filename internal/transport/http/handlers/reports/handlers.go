package reportshandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/reports"
	"staffhub/internal/transport/http/api"
	"staffhub/internal/transport/http/middleware"
)

type Handler struct {
	Table *access.Table
	Gate  *middleware.Gate
	Now   func() time.Time
}

func NewHandler(table *access.Table, gate *middleware.Gate) *Handler {
	return &Handler{Table: table, Gate: gate, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(h.Gate.RequirePermission(access.PermManageSettings))
		r.Get("/access-matrix", h.handleMatrixJSON)
		r.Get("/access-matrix.csv", h.handleMatrixCSV)
		r.Get("/access-matrix.pdf", h.handleMatrixPDF)
	})
}

func (h *Handler) handleMatrixJSON(w http.ResponseWriter, r *http.Request) {
	api.Success(w, reports.BuildMatrix(h.Table), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMatrixCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := reports.BuildMatrix(h.Table).WriteCSV(&buf); err != nil {
		slog.Error("access matrix csv failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=access-matrix.csv")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleMatrixPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := reports.BuildMatrix(h.Table).WritePDF(&buf, h.Now().UTC()); err != nil {
		slog.Error("access matrix pdf failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=access-matrix.pdf")
	_, _ = w.Write(buf.Bytes())
}
