package cdgtransition

import "testing"

func TestDefaultIsRowMajor(t *testing.T) {
	tr := Default(3, 2)
	want := []Position{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}
	if len(tr.Order) != len(want) {
		t.Fatalf("length = %d, want %d", len(tr.Order), len(want))
	}
	for i := range want {
		if tr.Order[i] != want[i] {
			t.Fatalf("position %d = %v, want %v", i, tr.Order[i], want[i])
		}
	}
}

const doc = `
[[transition]]
name = "wipe"
no_transition = false
order = [[0,0],[0,1],[1,0]]

[[transition]]
name = "text"
no_transition = true
order = [[0,0],[1,0]]
`

func TestLoadStringAndLookup(t *testing.T) {
	table, err := LoadString(doc)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	wipe, err := table.Lookup("wipe", 10, 10)
	if err != nil {
		t.Fatalf("lookup wipe: %v", err)
	}
	if len(wipe.Order) != 3 || wipe.NoTransition {
		t.Fatalf("unexpected wipe transition: %+v", wipe)
	}
	text, err := table.Lookup("text", 10, 10)
	if err != nil {
		t.Fatalf("lookup text: %v", err)
	}
	if !text.NoTransition {
		t.Fatal("expected text transition to carry no_transition=true")
	}
}

func TestLookupUnknownNameErrors(t *testing.T) {
	table, err := LoadString(doc)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if _, err := table.Lookup("nope", 10, 10); err == nil {
		t.Fatal("expected error for unknown transition name")
	}
}

func TestLookupEmptyNameAlwaysDefault(t *testing.T) {
	tr, err := (*Table)(nil).Lookup("", 5, 4)
	if err != nil {
		t.Fatalf("empty name lookup should not error: %v", err)
	}
	if len(tr.Order) != 20 {
		t.Fatalf("default order length = %d, want 20", len(tr.Order))
	}
}
