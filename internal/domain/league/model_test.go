package league

import "testing"

func TestHasSportPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sport string
		want  bool
	}{
		{"Rugby", true},
		{"Rugby Union", true},
		{"rugby league", true},
		{"Soccer", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := HasSportPrefix(tc.sport, "rugby"); got != tc.want {
			t.Fatalf("HasSportPrefix(%q)=%v want %v", tc.sport, got, tc.want)
		}
	}
	if !HasSportPrefix("Soccer", "") {
		t.Fatalf("empty prefix accepts everything")
	}
}

func TestLeagueValidate(t *testing.T) {
	t.Parallel()

	if err := (League{}).Validate(); err == nil {
		t.Fatalf("expected missing name error")
	}
	if err := (League{Name: "United Rugby Championship"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
