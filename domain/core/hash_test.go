package core

import "testing"

func TestComputePopulationHash(t *testing.T) {
	ids := []PatientID{"a", "b"}
	rows := [][]float64{{1, 2.5}, {3, 4}}

	h := ComputePopulationHash(ids, rows)
	if len(h) != 64 {
		t.Fatalf("expected 64 hex digits, got %d", len(h))
	}
	if h != ComputePopulationHash(ids, [][]float64{{1, 2.5}, {3, 4}}) {
		t.Error("expected identical populations to hash equally")
	}
	if h == ComputePopulationHash([]PatientID{"b", "a"}, [][]float64{{3, 4}, {1, 2.5}}) {
		t.Error("expected reordering to change the hash")
	}
	if h == ComputePopulationHash(ids, [][]float64{{1, 2.5}, {3, 4.0000001}}) {
		t.Error("expected a value change to change the hash")
	}
	if h.Short() != string(h[:12]) {
		t.Errorf("unexpected short form %q", h.Short())
	}
	if NewHash(nil).IsEmpty() {
		t.Error("expected hash of empty input to be non-empty")
	}
}
