package bloodpressure

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFields_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		in      Fields
		want    Reading
		wantErr bool
	}{
		{
			name: "plain",
			in:   Fields{Sys: "120", Dia: "80", Puls: "60", Date: "2024-01-01T08:00"},
			want: Reading{Sys: 120, Dia: 80, Puls: 60, Date: utc(2024, time.January, 1, 7, 0)},
		},
		{
			name: "spaces and fractions",
			in:   Fields{Sys: " 120.9 ", Dia: "80", Puls: "60.2", Date: " 2024-01-01T08:00 "},
			want: Reading{Sys: 120, Dia: 80, Puls: 60, Date: utc(2024, time.January, 1, 7, 0)},
		},
		{
			name: "out of clinical range is accepted",
			in:   Fields{Sys: "300", Dia: "-5", Puls: "1", Date: "2024-01-01T08:00"},
			want: Reading{Sys: 300, Dia: -5, Puls: 1, Date: utc(2024, time.January, 1, 7, 0)},
		},
		{name: "zero", in: Fields{Sys: "0", Dia: "80", Puls: "60", Date: "2024-01-01T08:00"}, wantErr: true},
		{name: "fraction below one", in: Fields{Sys: "0.5", Dia: "80", Puls: "60", Date: "2024-01-01T08:00"}, wantErr: true},
		{name: "overflow", in: Fields{Sys: "99999999999", Dia: "80", Puls: "60", Date: "2024-01-01T08:00"}, wantErr: true},
		{name: "iso date is not local input", in: Fields{Sys: "120", Dia: "80", Puls: "60", Date: "2024-01-01T07:00:00Z"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.in.Validate(cet)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// candidate parses a JSON object the way the import engine does.
func candidate(t *testing.T, s string) map[string]any {
	t.Helper()
	doc, err := parseDocument([]byte(s))
	if err != nil {
		t.Fatalf("invalid test candidate %s: %v", s, err)
	}
	return doc.(map[string]any)
}

func TestValidateCandidate(t *testing.T) {
	testCases := []struct {
		name      string
		in        string
		want      Reading
		badFields []string
	}{
		{
			name: "complete",
			in:   `{"id":"abc","sys":130,"dia":85,"puls":70,"date":"2024-01-01T07:00:00.000Z"}`,
			want: Reading{ID: "abc", Sys: 130, Dia: 85, Puls: 70, Date: utc(2024, time.January, 1, 7, 0)},
		},
		{
			name: "no id no date",
			in:   `{"sys":130,"dia":85,"puls":70}`,
			want: Reading{Sys: 130, Dia: 85, Puls: 70, Date: t0},
		},
		{
			name: "empty date defaults to now",
			in:   `{"sys":130,"dia":85,"puls":70,"date":""}`,
			want: Reading{Sys: 130, Dia: 85, Puls: 70, Date: t0},
		},
		{
			name: "numeric strings and numeric id",
			in:   `{"id":1704092400000,"sys":"130","dia":"85","puls":"70"}`,
			want: Reading{ID: "1704092400000", Sys: 130, Dia: 85, Puls: 70, Date: t0},
		},
		{
			name: "offset date is normalized",
			in:   `{"sys":130,"dia":85,"puls":70,"date":"2024-01-01T08:00:00+01:00"}`,
			want: Reading{Sys: 130, Dia: 85, Puls: 70, Date: utc(2024, time.January, 1, 7, 0)},
		},
		{name: "zero sys", in: `{"sys":0,"dia":80,"puls":60}`, badFields: []string{"sys"}},
		{name: "null dia", in: `{"sys":120,"dia":null,"puls":60}`, badFields: []string{"dia"}},
		{name: "boolean puls", in: `{"sys":120,"dia":80,"puls":true}`, badFields: []string{"puls"}},
		{name: "exponent string", in: `{"sys":"1e3","dia":80,"puls":60}`, badFields: []string{"sys"}},
		{name: "text sys", in: `{"sys":"high","dia":80,"puls":60}`, badFields: []string{"sys"}},
		{name: "bad date", in: `{"sys":120,"dia":80,"puls":60,"date":"last tuesday"}`, badFields: []string{"date"}},
		{name: "numeric date", in: `{"sys":120,"dia":80,"puls":60,"date":1704092400000}`, badFields: []string{"date"}},
		{name: "nothing", in: `{}`, badFields: []string{"sys", "dia", "puls"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateCandidate(candidate(t, tc.in), t0, cet)
			if len(tc.badFields) > 0 {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ValidateCandidate() error = %v, want *ValidationError", err)
				}
				for _, f := range tc.badFields {
					if !verr.Has(f) {
						t.Errorf("ValidateCandidate() error %v does not report %q", err, f)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateCandidate() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ValidateCandidate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateCandidate_DecodedWithoutUseNumber(t *testing.T) {
	// Values decoded by a plain json.Unmarshal are float64.
	var c map[string]any
	if err := json.Unmarshal([]byte(`{"sys":130.7,"dia":85,"puls":70}`), &c); err != nil {
		t.Fatal(err)
	}
	got, err := ValidateCandidate(c, t0, cet)
	if err != nil {
		t.Fatalf("ValidateCandidate() unexpected error: %v", err)
	}
	if got.Sys != 130 || got.Dia != 85 || got.Puls != 70 {
		t.Errorf("ValidateCandidate() = %v, want 130/85 70", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	_, err := Fields{Sys: "120"}.Validate(cet)
	want := "invalid reading: dia: missing; puls: missing; date: missing"
	if err == nil || err.Error() != want {
		t.Errorf("Validate() error = %v, want %q", err, want)
	}
}
