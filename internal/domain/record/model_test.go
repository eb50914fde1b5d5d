package record

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestFields_ColumnsSortedAndMerge(t *testing.T) {
	t.Parallel()

	f := Fields{"name": "Bulls", "external_id": "135", "country": nil}
	if got := f.Columns(); !reflect.DeepEqual(got, []string{"country", "external_id", "name"}) {
		t.Fatalf("unexpected columns %v", got)
	}

	merged := f.Merge(Fields{"name": "Vodacom Bulls", "short_name": "BUL"})
	if merged["name"] != "Vodacom Bulls" || merged["short_name"] != "BUL" || f["name"] != "Bulls" {
		t.Fatalf("merge must overlay into a copy: %+v / %+v", merged, f)
	}
}

func TestFields_Empty(t *testing.T) {
	t.Parallel()

	if !(Fields{"external_id": nil}).Empty() {
		t.Fatalf("nil-only key must be empty")
	}
	var kickoff *time.Time
	if !(Fields{"kickoff_time": kickoff}).Empty() {
		t.Fatalf("typed nil pointer must count as null")
	}
	if (Fields{"league_id": int64(1), "kickoff_time": nil}).Empty() {
		t.Fatalf("key with a value must not be empty")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	d, err := Describe(EntitySeason)
	if err != nil {
		t.Fatalf("describe season: %v", err)
	}
	if d.NameColumn != "label" || d.ExternalColumn != "external_season_key" {
		t.Fatalf("unexpected season descriptor %+v", d)
	}

	if _, err := Describe("widgets"); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}
