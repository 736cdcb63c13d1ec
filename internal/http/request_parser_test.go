package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dompet/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/income", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
		wantAmount  string
	}{
		{"form", "application/x-www-form-urlencoded", "date=2024-01-10&amount=150.000", false, "150.000"},
		{"json string", "application/json", `{"date":"2024-01-10","amount":"150.000"}`, true, "150.000"},
		{"json number", "application/json", `{"amount":150000}`, true, "150000"},
		{"json sniffed", "", `{"amount":"1"}`, true, "1"},
		{"control characters removed", "application/x-www-form-urlencoded", "amount=%0015%07", false, "15"},
		{"empty body", "", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.contentType, tt.body)
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.Get("amount"); got != tt.wantAmount {
				t.Errorf("Get(amount) = %q, want %q", got, tt.wantAmount)
			}
		})
	}
}

func TestRequestBodyParserInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/income", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	// Parse is memoized.
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error on second call")
	}
}

func TestRequestBodyParserRejectsOversizedBody(t *testing.T) {
	body := "pad=" + strings.Repeat("x", maxBodyBytes) + "&date=2024-01-10&amount=150000"
	req := httptest.NewRequest(http.MethodPost, "/income", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	p := NewRequestBodyParser(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if err := p.Parse(); !errors.As(err, &maxErr) {
		t.Fatalf("expected MaxBytesError, got %v", err)
	}
	if p.Get("amount") != "" {
		t.Fatalf("no value should be read from a rejected body, got %q", p.Get("amount"))
	}
}

func TestParseEntry(t *testing.T) {
	today := core.NewDate(2024, 1, 10)

	in, err := ParseEntry(newParser(t, "application/x-www-form-urlencoded", "date=2024-01-09&amount=Rp+150.000"), today)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if in.Date.String() != "2024-01-09" || in.Amount != 150000 {
		t.Fatalf("unexpected entry %+v", in)
	}

	in, err = ParseEntry(newParser(t, "application/x-www-form-urlencoded", "amount=500"), today)
	if err != nil || in.Date != today {
		t.Fatalf("empty date should mean today, got %+v, %v", in, err)
	}

	_, err = ParseEntry(newParser(t, "application/x-www-form-urlencoded", "date=10/01/2024&amount=500"), today)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	in, err = ParseEntry(newParser(t, "application/x-www-form-urlencoded", "date=2024-01-09&amount=12,5"), today)
	if !core.IsValidation(err) || in.RawAmount != "12,5" {
		t.Fatalf("expected ValidationError keeping raw input, got %+v, %v", in, err)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		query   string
		want    Order
		wantErr bool
	}{
		{"", OrderDesc, false},
		{"order=asc", OrderAsc, false},
		{"order=DESC", OrderDesc, false},
		{"order=sideways", "", true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseOrder(q)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, %v", tt.query, got, err)
		}
	}
}
