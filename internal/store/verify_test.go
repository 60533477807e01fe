package store

import (
	"strings"
	"testing"
)

func TestVerify_Agreement(t *testing.T) {
	results := []Result{
		{Path: "Field", Accessible: true, Visible: true},
		{Path: "Keep.Throne", Accessible: false, Visible: true},
	}
	if d := Verify(results, results); d != nil {
		t.Errorf("Verify() = %v, want nil", d)
	}
}

func TestVerify_Empty(t *testing.T) {
	if d := Verify(nil, nil); d != nil {
		t.Errorf("Verify() = %v, want nil", d)
	}
}

func TestVerify_AccessibleDiverges(t *testing.T) {
	recorded := []Result{
		{Path: "Field", Accessible: true, Visible: true},
		{Path: "Keep.Throne", Accessible: false, Visible: true},
	}
	fresh := []Result{
		{Path: "Field", Accessible: true, Visible: true},
		{Path: "Keep.Throne", Accessible: true, Visible: true},
	}

	d := Verify(recorded, fresh)
	if d == nil {
		t.Fatal("Verify() = nil, want divergence")
	}
	if d.Seq != 1 {
		t.Errorf("Seq = %d, want 1", d.Seq)
	}
	if d.Path != "Keep.Throne" {
		t.Errorf("Path = %q, want %q", d.Path, "Keep.Throne")
	}
	if !strings.Contains(d.String(), "Keep.Throne") {
		t.Errorf("String() = %q, want it to name the path", d.String())
	}
}

func TestVerify_VisibleDiverges(t *testing.T) {
	recorded := []Result{{Path: "Field", Accessible: true, Visible: true}}
	fresh := []Result{{Path: "Field", Accessible: true, Visible: false}}

	d := Verify(recorded, fresh)
	if d == nil {
		t.Fatal("Verify() = nil, want divergence")
	}
	if d.Seq != 0 || d.Path != "Field" {
		t.Errorf("divergence = %+v, want seq 0 at Field", d)
	}
}

func TestVerify_PathDiverges(t *testing.T) {
	recorded := []Result{{Path: "Field", Accessible: true, Visible: true}}
	fresh := []Result{{Path: "Keep", Accessible: true, Visible: true}}

	d := Verify(recorded, fresh)
	if d == nil {
		t.Fatal("Verify() = nil, want divergence")
	}
	if d.Recorded != "Field" || d.Fresh != "Keep" {
		t.Errorf("divergence = %+v, want recorded Field vs fresh Keep", d)
	}
}

func TestVerify_LengthMismatch(t *testing.T) {
	recorded := []Result{{Path: "Field", Accessible: true, Visible: true}}

	d := Verify(recorded, nil)
	if d == nil {
		t.Fatal("Verify() = nil, want divergence")
	}
	if d.Seq != -1 {
		t.Errorf("Seq = %d, want -1 for length mismatch", d.Seq)
	}
	if !strings.Contains(d.String(), "result count") {
		t.Errorf("String() = %q, want result count message", d.String())
	}
}

func TestVerify_ReportsFirstDivergence(t *testing.T) {
	recorded := []Result{
		{Path: "A", Accessible: true, Visible: true},
		{Path: "B", Accessible: true, Visible: true},
		{Path: "C", Accessible: true, Visible: true},
	}
	fresh := []Result{
		{Path: "A", Accessible: true, Visible: true},
		{Path: "B", Accessible: false, Visible: true},
		{Path: "C", Accessible: false, Visible: true},
	}

	d := Verify(recorded, fresh)
	if d == nil {
		t.Fatal("Verify() = nil, want divergence")
	}
	if d.Seq != 1 || d.Path != "B" {
		t.Errorf("divergence = %+v, want first divergence at seq 1 (B)", d)
	}
}
