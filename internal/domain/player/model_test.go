package player

import "testing"

func TestSplitName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, first, last string
	}{
		{"Handre Pollard", "Handre", "Pollard"},
		{"Pieter-Steph du Toit", "Pieter-Steph", "du Toit"},
		{"Bismarck", "Bismarck", ""},
		{"  ", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("SplitName(%q)=(%q,%q) want (%q,%q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}
