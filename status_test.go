package bloodpressure

import "testing"

func TestClassify(t *testing.T) {
	testCases := []struct {
		sys, dia int
		want     Status
	}{
		{120, 80, Normal}, // boundaries are exclusive
		{100, 60, Normal},
		{121, 80, Elevated},
		{120, 81, Elevated},
		{125, 80, Elevated},
		{140, 90, Elevated},
		{141, 80, High},
		{120, 91, High},
		{200, 120, High},
		{-10, -10, Normal},
	}
	for _, tc := range testCases {
		if got := Classify(tc.sys, tc.dia); got != tc.want {
			t.Errorf("Classify(%d, %d) = %v, want %v", tc.sys, tc.dia, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{Normal, Elevated, High} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v, want %v", s.String(), got, err, s)
		}
	}
	if _, err := ParseStatus("critical"); err == nil {
		t.Errorf("ParseStatus(%q) should fail", "critical")
	}
}

func TestReading_Status(t *testing.T) {
	r := Reading{Sys: 141, Dia: 80}
	if r.Status() != High {
		t.Errorf("Status() = %v, want %v", r.Status(), High)
	}
}
