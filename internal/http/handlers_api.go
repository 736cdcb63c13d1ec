package http

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"dompet/internal/core"
	"dompet/internal/export"
	"dompet/internal/log"
)

type recordsResponse struct {
	Order   Order        `json:"order"`
	Records []recordJSON `json:"records"`
	Stale   bool         `json:"stale"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	order, err := ParseOrder(r.URL.Query())
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}

	snap, err := s.ledger.Load(r.Context())
	records := snap.Descending()
	if order == OrderAsc {
		records = snap.Ascending()
	}
	resp := recordsResponse{Order: order, Records: toRecordJSON(records), Stale: snap.Stale}
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		resp.Error = msgLoadFailed
	}
	NewResponse().Status(status).JSON(resp).Write(w)
}

type chartResponse struct {
	core.ChartSeries
	Today   string  `json:"today"`
	Divisor float64 `json:"divisor"`
	Stale   bool    `json:"stale"`
	Error   string  `json:"error,omitempty"`
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Load(r.Context())
	resp := chartResponse{
		ChartSeries: s.ledger.Chart(snap),
		Today:       s.ledger.Today().String(),
		Divisor:     core.DisplayDivisor,
		Stale:       snap.Stale,
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		resp.Error = msgLoadFailed
	}
	NewResponse().Status(status).JSON(resp).Write(w)
}

// handleExport serves /export.xlsx and /export.csv. Exports never fall back
// to stale data.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := export.ParseFormat(strings.TrimPrefix(r.URL.Path, "/export."))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	logger := log.FromContext(ctx)

	snap, err := s.ledger.Load(ctx)
	if err != nil {
		InternalServerError(msgLoadFailed).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, snap.Records); err != nil {
		logger.LogError(ctx, "Export failed", err, log.OpExport, log.NewFields())
		InternalServerError("Gagal mengekspor data").Write(w)
		return
	}

	now := time.Now().In(s.ledger.Location())
	logger.InfoContext(ctx, "Ledger exported", log.FieldFormat, string(format), log.FieldRecords, len(snap.Records))
	NewResponse().
		Header("Content-Type", format.ContentType()).
		Header("Content-Disposition", `attachment; filename="`+format.Filename(now)+`"`).
		Body(buf.Bytes()).
		Write(w)
}
