package position

import "testing"

func TestFromText_Known(t *testing.T) {
	t.Parallel()

	p, known := FromText("  Scrum-Half ")
	if !known || p.Code != "SCRUM_HALF" || p.Category != CategoryBack {
		t.Fatalf("unexpected mapping %+v known=%v", p, known)
	}
	if p.ShirtMin == nil || *p.ShirtMin != 9 || *p.ShirtMax != 9 {
		t.Fatalf("expected shirt 9, got %+v", p)
	}

	generic, known := FromText("Utility Back")
	if !known || generic.ShirtMin != nil || generic.ShirtMax != nil {
		t.Fatalf("generic roles carry no shirt range: %+v", generic)
	}

	lock, _ := FromText("Second Row")
	if lock.Code != "LOCK" {
		t.Fatalf("second row should map to lock, got %s", lock.Code)
	}
}

func TestFromText_UnknownUsesHeuristics(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text     string
		code     string
		category Category
	}{
		{"Loose Forward", "LOOSE_FORWARD", CategoryForward},
		{"Wing/Fullback", "WING_FULLBACK", CategoryBack},
		{"Kicking Coach", "KICKING_COACH", CategoryOther},
		{"Lock / Back Row", "LOCK_BACK_ROW", CategoryForward},
	}
	for _, tc := range cases {
		p, known := FromText(tc.text)
		if known {
			t.Fatalf("%q should not be a catalog entry", tc.text)
		}
		if p.Code != tc.code || p.Category != tc.category || p.Name != tc.text {
			t.Fatalf("FromText(%q)=%+v", tc.text, p)
		}
	}
}

func TestCode_Empty(t *testing.T) {
	t.Parallel()

	if got := Code("  "); got != "POSITION" {
		t.Fatalf("unexpected code %q", got)
	}
}
