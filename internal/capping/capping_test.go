package capping

import (
	"reflect"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{Key: 22, Value: 9},
		{Key: 44, Value: 12},
		{Key: 55, Value: 8},
		{Key: 33, Value: 2},
		{Key: 66, Value: 4},
	}
}

func keysOf(rows []Row) []any {
	keys := make([]any, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestCapWithOthers(t *testing.T) {
	r := New()
	r.Cap = 3

	rows := r.Data(sampleRows())

	expected := []any{44, 22, 55, "Others"}
	if !reflect.DeepEqual(keysOf(rows), expected) {
		t.Fatalf("Expected keys %v, got %v", expected, keysOf(rows))
	}
	others := rows[3]
	if others.Value != 6 {
		t.Errorf("Expected Others value 6, got %v", others.Value)
	}
	if !reflect.DeepEqual(others.Others, []any{66, 33}) {
		t.Errorf("Expected folded keys [66 33], got %v", others.Others)
	}
	if total := Total(rows); total != 35 {
		t.Errorf("Expected total 35, got %v", total)
	}
}

func TestCapWithKeyOrdering(t *testing.T) {
	r := New()
	r.Cap = 3
	r.Ordering = ByKey

	rows := r.Data(sampleRows())

	expected := []any{22, 33, 44, "Others"}
	if !reflect.DeepEqual(keysOf(rows), expected) {
		t.Errorf("Expected keys %v, got %v", expected, keysOf(rows))
	}
	if rows[3].Value != 12 {
		t.Errorf("Expected Others value 8+4=12, got %v", rows[3].Value)
	}
}

func TestCapTakeBack(t *testing.T) {
	r := New()
	r.Cap = 2
	r.TakeFront = false

	rows := r.Data(sampleRows())

	expected := []any{66, 33, "Others"}
	if !reflect.DeepEqual(keysOf(rows), expected) {
		t.Errorf("Expected keys %v, got %v", expected, keysOf(rows))
	}
	if rows[2].Value != 29 {
		t.Errorf("Expected Others value 29, got %v", rows[2].Value)
	}
}

func TestCapWithoutOthersDropsRest(t *testing.T) {
	r := New()
	r.Cap = 3
	r.OthersGrouper = nil

	rows := r.Data(sampleRows())

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if total := Total(rows); total != 29 {
		t.Errorf("Expected total of kept rows 29, got %v", total)
	}
}

func TestZeroOthersSumIsOmitted(t *testing.T) {
	r := New()
	r.Cap = 2

	rows := r.Data([]Row{
		{Key: "a", Value: 5},
		{Key: "b", Value: 3},
		{Key: "c", Value: 0},
		{Key: "d", Value: 0},
	})

	if len(rows) != 2 {
		t.Errorf("Expected no Others row for a zero remainder, got %v", rows)
	}
}

func TestUnlimitedReturnsSortedRows(t *testing.T) {
	r := New()
	in := sampleRows()

	rows := r.Data(in)

	expected := []any{44, 22, 55, 66, 33}
	if !reflect.DeepEqual(keysOf(rows), expected) {
		t.Errorf("Expected keys %v, got %v", expected, keysOf(rows))
	}
	if in[0].Key != 22 {
		t.Error("Expected input rows not to be reordered")
	}
}

func TestOrderingIsStable(t *testing.T) {
	r := New()
	r.Cap = 2
	in := []Row{
		{Key: "a", Value: 1},
		{Key: "b", Value: 1},
		{Key: "c", Value: 1},
		{Key: "d", Value: 1},
	}

	first := r.Data(in)
	second := r.Data(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %v and %v", first, second)
	}
	if !reflect.DeepEqual(keysOf(first), []any{"a", "b", "Others"}) {
		t.Errorf("Expected ties to keep input order, got %v", keysOf(first))
	}
}

func TestValueConservation(t *testing.T) {
	in := sampleRows()
	for cap := 1; cap < len(in); cap++ {
		r := New()
		r.Cap = cap
		if got := Total(r.Data(in)); got != Total(in) {
			t.Errorf("cap %d: expected total %v, got %v", cap, Total(in), got)
		}
	}
}

func TestZeroCapFoldsEverything(t *testing.T) {
	in := sampleRows()
	r := New()
	r.Cap = 0

	out := r.Data(in)
	if len(out) != 1 || !out[0].IsOthers() || len(out[0].Others) != len(in) {
		t.Fatalf("Expected a single Others row holding every key, got %v", out)
	}
	if out[0].Value != Total(in) {
		t.Errorf("Expected Others to hold %v, got %v", Total(in), out[0].Value)
	}

	r.Cap = -1
	if got := r.Data(in); len(got) != len(in) {
		t.Errorf("Expected a negative cap to keep all %d rows, got %d", len(in), len(got))
	}
}
