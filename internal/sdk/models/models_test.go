package models

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"urgent", SeverityUrgent},
		{"URGENT", SeverityUrgent},
		{"Moderate", SeverityModerate},
		{"minor", SeverityMinor},
		{"critical", SeverityMinor},
		{"", SeverityMinor},
		{"  urgent  ", SeverityUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSeverity(tt.in); got != tt.want {
				t.Fatalf("NormalizeSeverity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestListRoundTrip(t *testing.T) {
	steps := []string{"Apply ice", "See a doctor"}

	joined := JoinList(steps)
	if joined != "Apply ice|See a doctor" {
		t.Fatalf("unexpected joined value %q", joined)
	}

	got := SplitList(&joined)
	if len(got) != 2 || got[0] != steps[0] || got[1] != steps[1] {
		t.Fatalf("round trip produced %v, want %v", got, steps)
	}
}

func TestSplitList_Empty(t *testing.T) {
	if got := SplitList(nil); got == nil || len(got) != 0 {
		t.Fatalf("SplitList(nil) = %v, want empty slice", got)
	}

	empty := ""
	if got := SplitList(&empty); got == nil || len(got) != 0 {
		t.Fatalf("SplitList(empty) = %v, want empty slice", got)
	}
}
