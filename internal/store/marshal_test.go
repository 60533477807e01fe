package store

import (
	"math/big"
	"testing"

	"github.com/radolang/rado/ast"
)

func TestMarshalConfig_Empty(t *testing.T) {
	got, err := marshalConfig(nil)
	if err != nil {
		t.Fatalf("marshalConfig() failed: %v", err)
	}
	if got != "{}" {
		t.Errorf("marshalConfig() = %q, want %q", got, "{}")
	}
}

func TestMarshalConfig_Canonical(t *testing.T) {
	cfg := map[ast.Path]ast.Value{
		"C.Mode":  ast.PathValue("C.Mode.Hard"),
		"A.Share": ast.Num(big.NewRat(2, 3)),
		"B.Open":  ast.BoolValue(false),
	}
	got, err := marshalConfig(cfg)
	if err != nil {
		t.Fatalf("marshalConfig() failed: %v", err)
	}

	// Canonical JSON has deterministic key ordering and tagged value kinds
	expected := `{"A.Share":{"num":"2/3"},"B.Open":{"bool":false},"C.Mode":{"path":"C.Mode.Hard"}}`
	if got != expected {
		t.Errorf("marshalConfig() = %q, want %q", got, expected)
	}
}

func TestMarshalConfig_Deterministic(t *testing.T) {
	cfg := map[ast.Path]ast.Value{
		"Z": ast.NumFromInt(1),
		"A": ast.NumFromInt(2),
		"M": ast.BoolValue(true),
	}
	first, err := marshalConfig(cfg)
	if err != nil {
		t.Fatalf("marshalConfig() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := marshalConfig(cfg)
		if err != nil {
			t.Fatalf("marshalConfig() iteration %d failed: %v", i, err)
		}
		if again != first {
			t.Fatalf("marshalConfig() not deterministic: %q vs %q", first, again)
		}
	}
}

func TestUnmarshalConfig_RoundTrip(t *testing.T) {
	cfg := map[ast.Path]ast.Value{
		"Rules.KeyShare":   ast.Num(big.NewRat(7, 3)),
		"Rules.Whole":      ast.NumFromInt(5),
		"Rules.OpenWorld":  ast.BoolValue(true),
		"Rules.Difficulty": ast.PathValue("Rules.Difficulty.Hard"),
	}
	data, err := marshalConfig(cfg)
	if err != nil {
		t.Fatalf("marshalConfig() failed: %v", err)
	}
	got, err := unmarshalConfig(data)
	if err != nil {
		t.Fatalf("unmarshalConfig() failed: %v", err)
	}
	if len(got) != len(cfg) {
		t.Fatalf("round trip has %d entries, want %d", len(got), len(cfg))
	}
	for p, want := range cfg {
		if !ast.Equal(got[p], want) {
			t.Errorf("round trip at %s = %v, want %v", p, got[p], want)
		}
	}
}

func TestUnmarshalConfig_Empty(t *testing.T) {
	for _, data := range []string{"", "{}"} {
		got, err := unmarshalConfig(data)
		if err != nil {
			t.Fatalf("unmarshalConfig(%q) failed: %v", data, err)
		}
		if len(got) != 0 {
			t.Errorf("unmarshalConfig(%q) has %d entries, want 0", data, len(got))
		}
	}
}

func TestUnmarshalConfig_BadRational(t *testing.T) {
	_, err := unmarshalConfig(`{"X":{"num":"not-a-number"}}`)
	if err == nil {
		t.Error("expected error for malformed rational, got nil")
	}
}

func TestUnmarshalConfig_UnknownTag(t *testing.T) {
	_, err := unmarshalConfig(`{"X":{"frob":"y"}}`)
	if err == nil {
		t.Error("expected error for unknown value tag, got nil")
	}
}

func TestMarshalInventory_Canonical(t *testing.T) {
	inv := map[ast.Path]int64{"Sword": 1, "Bomb": 3}
	got, err := marshalInventory(inv)
	if err != nil {
		t.Fatalf("marshalInventory() failed: %v", err)
	}
	expected := `{"Bomb":3,"Sword":1}`
	if got != expected {
		t.Errorf("marshalInventory() = %q, want %q", got, expected)
	}
}

func TestMarshalInventory_Empty(t *testing.T) {
	got, err := marshalInventory(nil)
	if err != nil {
		t.Fatalf("marshalInventory() failed: %v", err)
	}
	if got != "{}" {
		t.Errorf("marshalInventory() = %q, want %q", got, "{}")
	}
}

func TestUnmarshalInventory_RoundTrip(t *testing.T) {
	inv := map[ast.Path]int64{"Sword": 1, "Bomb": 3, "Rupee": 200}
	data, err := marshalInventory(inv)
	if err != nil {
		t.Fatalf("marshalInventory() failed: %v", err)
	}
	got, err := unmarshalInventory(data)
	if err != nil {
		t.Fatalf("unmarshalInventory() failed: %v", err)
	}
	if len(got) != len(inv) {
		t.Fatalf("round trip has %d entries, want %d", len(got), len(inv))
	}
	for p, want := range inv {
		if got[p] != want {
			t.Errorf("round trip at %s = %d, want %d", p, got[p], want)
		}
	}
}

func TestUnmarshalInventory_RejectsFractional(t *testing.T) {
	_, err := unmarshalInventory(`{"Sword":1.5}`)
	if err == nil {
		t.Error("expected error for fractional count, got nil")
	}
}

func TestMarshalPlacement_Canonical(t *testing.T) {
	placement := map[ast.Path]ast.Path{
		"Keep.Throne": "Sword",
		"Field.Chest": "Bomb",
	}
	got, err := marshalPlacement(placement)
	if err != nil {
		t.Fatalf("marshalPlacement() failed: %v", err)
	}
	expected := `{"Field.Chest":"Bomb","Keep.Throne":"Sword"}`
	if got != expected {
		t.Errorf("marshalPlacement() = %q, want %q", got, expected)
	}
}

func TestMarshalPlacement_Empty(t *testing.T) {
	got, err := marshalPlacement(nil)
	if err != nil {
		t.Fatalf("marshalPlacement() failed: %v", err)
	}
	if got != "{}" {
		t.Errorf("marshalPlacement() = %q, want %q", got, "{}")
	}
}

func TestUnmarshalPlacement_RoundTrip(t *testing.T) {
	placement := map[ast.Path]ast.Path{"Field.Chest": "Bomb", "Keep.Throne": "Sword"}
	data, err := marshalPlacement(placement)
	if err != nil {
		t.Fatalf("marshalPlacement() failed: %v", err)
	}
	got, err := unmarshalPlacement(data)
	if err != nil {
		t.Fatalf("unmarshalPlacement() failed: %v", err)
	}
	if len(got) != len(placement) {
		t.Fatalf("round trip has %d entries, want %d", len(got), len(placement))
	}
	for loc, want := range placement {
		if got[loc] != want {
			t.Errorf("round trip at %s = %s, want %s", loc, got[loc], want)
		}
	}
}
