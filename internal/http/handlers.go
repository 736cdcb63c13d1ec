package http

import (
	"bytes"
	"errors"
	"net/http"

	"dompet/internal/core"
	"dompet/internal/locale"
	"dompet/internal/log"
	"dompet/internal/services"
)

const (
	msgLoadFailed  = "Gagal memuat data. Menampilkan data terakhir yang tersedia."
	msgSaveFailed  = "Gagal menyimpan data."
	msgResetFailed = "Gagal mereset data."
	msgNotReloaded = "Data tersimpan, tetapi daftar gagal dimuat ulang."
	msgBadRequest  = "Format permintaan tidak valid"
	msgTooLarge    = "Permintaan terlalu besar"
)

type homePage struct {
	Title      string
	Chart      chartView
	Lines      []ledgerLine
	Stale      bool
	Error      string
	CurrencyID string
}

type entryPage struct {
	Title   string
	Kind    entryKind
	Today   string
	Date    string
	Amount  string
	Lines   []entryLine
	Stale   bool
	Error   string
	Message string
}

// render executes a page template into a buffer first so a template failure
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Template execution failed", err, log.OpRender, log.NewFields())
		InternalServerError("Gagal menampilkan halaman").Write(w)
		return
	}
	NewResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

func (s *Server) homeData(snap services.Snapshot) homePage {
	return homePage{
		Title:      "Dompet",
		Chart:      buildChart(s.ledger.Chart(snap)),
		Lines:      ledgerLines(snap.Descending()),
		Stale:      snap.Stale,
		CurrencyID: locale.CurrencyCode(),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Load(r.Context())
	data := s.homeData(snap)
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		data.Error = msgLoadFailed
	}
	s.render(w, r, status, "home.html", data)
}

func (s *Server) entryData(kind entryKind, snap services.Snapshot) entryPage {
	today := s.ledger.Today().String()
	return entryPage{
		Title: kind.Title,
		Kind:  kind,
		Today: today,
		Date:  today,
		Lines: entryLines(snap.Descending(), kind),
		Stale: snap.Stale,
	}
}

func (s *Server) handleEntryPage(kind entryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.ledger.Load(r.Context())
		data := s.entryData(kind, snap)
		status := http.StatusOK
		if err != nil {
			status = http.StatusInternalServerError
			data.Error = msgLoadFailed
		}
		s.render(w, r, status, "entry.html", data)
	}
}

func (s *Server) handleEntrySave(kind entryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		parser := NewRequestBodyParser(w, r)
		if err := parser.Parse(); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Parse body error", log.FieldError, err, log.FieldPath, r.URL.Path)
			status, message := http.StatusBadRequest, msgBadRequest
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				status, message = http.StatusRequestEntityTooLarge, msgTooLarge
			}
			if wantsJSON(r) {
				JSONError(status, message).Write(w)
				return
			}
			ErrorResponse(status, message).Write(w)
			return
		}
		asJSON := parser.IsJSON() || wantsJSON(r)

		in, err := ParseEntry(parser, s.ledger.Today())
		var rec core.Record
		var snap services.Snapshot
		if err == nil {
			rec, snap, err = s.ledger.Save(ctx, in.Date, kind.Field, in.Amount)
		} else {
			snap = s.ledger.Last()
		}

		saved := err == nil || errors.Is(err, services.ErrNotReloaded)
		status := http.StatusOK
		message := ""
		switch {
		case err == nil:
		case saved:
			status = http.StatusInternalServerError
			message = msgNotReloaded
		case core.IsValidation(err):
			status = http.StatusUnprocessableEntity
			message = validationMessage(err)
		default:
			status = http.StatusInternalServerError
			message = msgSaveFailed
		}

		if asJSON {
			if !saved {
				JSONError(status, message).Write(w)
				return
			}
			resp := saveResponse{recordJSON: toRecordJSON([]core.Record{rec})[0], Error: message}
			NewResponse().Status(status).JSON(resp).Write(w)
			return
		}

		data := s.entryData(kind, snap)
		data.Error = message
		if saved {
			data.Message = kind.Saved
			data.Date = in.Date.String()
		} else {
			// Keep what the user typed so it can be corrected.
			data.Date = in.RawDate
			data.Amount = in.RawAmount
		}
		s.render(w, r, status, "entry.html", data)
	}
}

// saveResponse is the JSON answer to a committed save. Error is set when the
// list could not be reloaded afterwards.
type saveResponse struct {
	recordJSON
	Error string `json:"error,omitempty"`
}

// validationMessage maps a ValidationError to the text shown on screen.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Tanggal tidak valid"
	case errors.Is(err, core.ErrNegativeAmount):
		return "Jumlah tidak boleh negatif"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Jumlah tidak valid"
	default:
		return "Data tidak valid"
	}
}

// handleReset needs an explicit confirm=yes field.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		log.FromContext(ctx).InfoContext(ctx, "Reset not confirmed")
		BadRequestError("Reset harus dikonfirmasi").Write(w)
		return
	}

	snap, err := s.ledger.Reset(ctx)
	if err != nil {
		data := s.homeData(snap)
		data.Error = msgResetFailed
		s.render(w, r, http.StatusInternalServerError, "home.html", data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
