package shared

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrdesk/internal/transport/http/api"
)

// ValidationIssue is one rejected field, reported under details.fields.
type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues so a handler can report them all at once.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum matches case-insensitively; an empty value passes so optional
// filters can share it with Required.
func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, candidate := range allowed {
		if strings.EqualFold(value, strings.TrimSpace(candidate)) {
			return
		}
	}
	v.Add(field, reason)
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(raw)
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// Month parses a pay or report month and returns its first day.
func (v *Validator) Month(field, raw string) (time.Time, bool) {
	month, err := ParseMonth(raw)
	if err != nil {
		v.Add(field, "must be YYYY-MM")
		return time.Time{}, false
	}
	return month, true
}

// maxAmount is the first value NUMERIC(12,2) cannot store.
var maxAmount = decimal.New(1, 10)

// Amount parses a ringgit value in plain notation. Exponents, negatives,
// fractions of a sen and values the money columns cannot hold are rejected.
func (v *Validator) Amount(field, raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	amount, err := decimal.NewFromString(raw)
	switch {
	case err != nil || strings.ContainsAny(raw, "eE"):
		v.Add(field, "must be a number")
	case amount.IsNegative():
		v.Add(field, "must not be negative")
	case !amount.Equal(amount.Round(2)):
		v.Add(field, "must have at most two decimal places")
	case amount.GreaterThanOrEqual(maxAmount):
		v.Add(field, "is too large")
	default:
		return amount, true
	}
	return decimal.Zero, false
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return
	}
	v.Add(startField, "must be on or before "+endField)
	v.Add(endField, "must be on or after "+startField)
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

// Issues returns a sorted copy so responses are stable for clients.
func (v *Validator) Issues() []ValidationIssue {
	if !v.HasIssues() {
		return nil
	}
	out := append([]ValidationIssue(nil), v.issues...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Reject writes a 400 with every issue and reports whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
