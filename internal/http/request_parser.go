package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dompet/internal/core"
)

// maxBodyBytes caps entry request bodies.
const maxBodyBytes = 64 << 10

// RequestBodyParser reads an entry body once and serves values from either a
// JSON object or a form-encoded body.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request. A body over
// maxBodyBytes makes Parse fail with *http.MaxBytesError.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// EntryInput is a parsed income or outcome submission.
type EntryInput struct {
	Date      core.Date
	Amount    int64
	RawDate   string
	RawAmount string
}

// ParseEntry reads the date and amount fields. An empty date means today.
// Errors are core.ValidationError values.
func ParseEntry(p *RequestBodyParser, today core.Date) (EntryInput, error) {
	in := EntryInput{
		RawDate:   p.Get("date"),
		RawAmount: p.Get("amount"),
		Date:      today,
	}
	if in.RawDate != "" {
		d, err := core.ParseDate(in.RawDate)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	amount, err := core.ParseAmount(in.RawAmount)
	if err != nil {
		return in, err
	}
	in.Amount = amount
	return in, nil
}

// Order is the requested list order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

var errInvalidOrder = errors.New("order must be asc or desc")

// ParseOrder reads ?order=, defaulting to most recent first.
func ParseOrder(query url.Values) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(query.Get("order")))); o {
	case "":
		return OrderDesc, nil
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", errInvalidOrder
	}
}
