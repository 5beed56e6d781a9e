package crossfilter

import (
	"testing"

	"chartsync/internal/filters"
)

func payments() []Record {
	return []Record{
		{"type": "tab", "total": 190.0, "tip": 100.0, "quantity": 2.0},
		{"type": "tab", "total": 190.0, "tip": 100.0, "quantity": 2.0},
		{"type": "visa", "total": 300.0, "tip": 200.0, "quantity": 1.0},
		{"type": "cash", "total": 100.0, "tip": 0.0, "quantity": 1.0},
		{"type": "tab", "total": 90.0, "tip": 0.0, "quantity": 2.0},
		{"type": "visa", "total": 200.0, "tip": 0.0, "quantity": 2.0},
	}
}

func rowValue(rows []Row, key any) float64 {
	for _, r := range rows {
		if r.Key == key {
			return r.Value
		}
	}
	return -1
}

func TestGroupAllIsKeyOrdered(t *testing.T) {
	cf := New(payments())
	byType := cf.FieldDimension("type").Group()

	rows := byType.All()
	if len(rows) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(rows))
	}
	expected := []string{"cash", "tab", "visa"}
	for i, key := range expected {
		if rows[i].Key != key {
			t.Errorf("Row %d: expected key %s, got %v", i, key, rows[i].Key)
		}
	}
	if rowValue(rows, "tab") != 3 {
		t.Errorf("Expected 3 tab payments, got %v", rowValue(rows, "tab"))
	}
}

func TestGroupIgnoresOwnDimensionFilter(t *testing.T) {
	cf := New(payments())
	typeDim := cf.FieldDimension("type")
	byType := typeDim.Group()
	totals := cf.FieldDimension("total").Group()

	typeDim.FilterExact("visa")

	if rowValue(byType.All(), "tab") != 3 {
		t.Error("Expected a group to ignore its own dimension's filter")
	}
	rows := totals.All()
	if rowValue(rows, 190.0) != 0 {
		t.Errorf("Expected tab totals to be filtered out, got %v", rowValue(rows, 190.0))
	}
	if rowValue(rows, 300.0) != 1 {
		t.Errorf("Expected the visa total to remain, got %v", rowValue(rows, 300.0))
	}
	if n := len(cf.AllFiltered()); n != 2 {
		t.Errorf("Expected 2 filtered records, got %d", n)
	}
}

func TestFilterRangeIsHalfOpen(t *testing.T) {
	cf := New(payments())
	total := cf.FieldDimension("total")
	total.FilterRange(100.0, 200.0)

	if n := len(cf.AllFiltered()); n != 3 {
		t.Errorf("Expected 3 records in [100, 200), got %d", n)
	}
	total.FilterAll()
	if total.HasFilter() || len(cf.AllFiltered()) != 6 {
		t.Error("Expected FilterAll to clear the dimension")
	}
}

func TestApplicatorDrivesDimension(t *testing.T) {
	cf := New(payments())
	typeDim := cf.FieldDimension("type")

	filters.Apply(typeDim, []filters.Filter{filters.Value("cash"), filters.Value("visa")})

	if n := len(cf.AllFiltered()); n != 3 {
		t.Errorf("Expected cash or visa records, got %d", n)
	}
}

func TestReduceSumAndTop(t *testing.T) {
	cf := New(payments())
	tips := cf.FieldDimension("type").Group().ReduceSumField("tip")

	top := tips.Top(1)
	if len(top) != 1 || top[0].Key != "tab" || top[0].Value != 200 {
		t.Errorf("Expected tab with 200 tips on top, got %v", top)
	}

	tips.Order(func(r Row) any { return -r.Value })
	if top := tips.Top(1); top[0].Key != "cash" {
		t.Errorf("Expected custom ordering to put cash first, got %v", top)
	}
}

func TestGroupByBinsKeys(t *testing.T) {
	cf := New(payments())
	bins := cf.FieldDimension("total").GroupBy(func(k any) any {
		return float64(int(k.(float64)/100) * 100)
	})

	rows := bins.All()
	if rowValue(rows, 100.0) != 3 {
		t.Errorf("Expected 3 totals in the 100 bin, got %v", rowValue(rows, 100.0))
	}
}

func TestAddAppliesExistingFilters(t *testing.T) {
	cf := New(payments())
	typeDim := cf.FieldDimension("type")
	typeDim.FilterExact("cash")

	cf.Add(Record{"type": "cash", "total": 5.0})

	if n := len(cf.AllFiltered()); n != 2 {
		t.Errorf("Expected 2 cash records after Add, got %d", n)
	}
	if cf.Size() != 7 {
		t.Errorf("Expected size 7, got %d", cf.Size())
	}
}
