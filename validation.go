package bloodpressure

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/etnz/bloodpressure/date"
	"github.com/shopspring/decimal"
)

var (
	minMeasure = decimal.NewFromInt(math.MinInt32)
	maxMeasure = decimal.NewFromInt(math.MaxInt32)
)

// Validate checks fields entered by a person and returns the reading they
// describe, without an id. The date is required and is read as a wall-clock
// value in loc.
func (f Fields) Validate(loc *time.Location) (Reading, error) {
	var verr ValidationError
	r := Reading{
		Sys:  verr.measure("sys", f.Sys),
		Dia:  verr.measure("dia", f.Dia),
		Puls: verr.measure("puls", f.Puls),
	}

	switch day := strings.TrimSpace(f.Date); {
	case day == "":
		verr.add("date", "missing")
	default:
		t, err := date.ParseLocal(day, loc)
		if err != nil {
			verr.add("date", "want a local date and time like "+date.LocalFormat)
			break
		}
		r.Date = t
	}

	if err := verr.orNil(); err != nil {
		return Reading{}, err
	}
	return r, nil
}

// ValidateCandidate checks a record found in an external document. A missing
// or empty date defaults to now. The returned reading carries the candidate's
// own id, if any; making it unique is the ledger's business.
func ValidateCandidate(c map[string]any, now time.Time, loc *time.Location) (Reading, error) {
	return validateCandidate(c, &now, loc)
}

// validateCandidate is ValidateCandidate with an optional default date: when
// now is nil the date is required.
func validateCandidate(c map[string]any, now *time.Time, loc *time.Location) (Reading, error) {
	var verr ValidationError
	r := Reading{
		ID:   candidateID(c["id"]),
		Sys:  verr.measure("sys", c["sys"]),
		Dia:  verr.measure("dia", c["dia"]),
		Puls: verr.measure("puls", c["puls"]),
	}

	raw, _ := c["date"].(string)
	switch raw = strings.TrimSpace(raw); {
	case c["date"] != nil && !isString(c["date"]):
		verr.add("date", "not a string")
	case raw == "" && now == nil:
		verr.add("date", "missing")
	case raw == "":
		r.Date = now.UTC().Truncate(time.Millisecond)
	default:
		t, err := date.ParseInstant(raw, loc)
		if err != nil {
			verr.add("date", err.Error())
			break
		}
		r.Date = t
	}

	if err := verr.orNil(); err != nil {
		return Reading{}, err
	}
	return r, nil
}

// measure coerces a sys/dia/puls value to an integer, recording a field error
// when it cannot. Numbers and numeric strings are accepted, fractions are
// truncated toward zero, and zero counts as not provided.
func (e *ValidationError) measure(field string, v any) int {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		e.add(field, "missing")
		return 0
	case int:
		d = decimal.NewFromInt(int64(x))
	case float64:
		d = decimal.NewFromFloat(x)
	case json.Number:
		d = parseDecimal(string(x), &e.Fields, field)
	case string:
		if strings.TrimSpace(x) == "" {
			e.add(field, "missing")
			return 0
		}
		if strings.ContainsAny(x, "eE") {
			e.add(field, "not a number")
			return 0
		}
		d = parseDecimal(x, &e.Fields, field)
	default:
		e.add(field, "not a number")
		return 0
	}
	if e.Has(field) {
		return 0
	}

	d = d.Truncate(0)
	switch {
	case d.IsZero():
		e.add(field, "missing")
		return 0
	case d.LessThan(minMeasure) || d.GreaterThan(maxMeasure):
		e.add(field, "out of range")
		return 0
	}
	return int(d.IntPart())
}

func parseDecimal(s string, errs *[]FieldError, field string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Reason: "not a number"})
	}
	return d
}

// candidateID returns the id of a document record as text. Numeric ids, as
// written by older exports, are kept in their decimal form.
func candidateID(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	default:
		return ""
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
