package diagnostics

import "testing"

func TestNilSinkIsSafe(t *testing.T) {
	var s *Sink
	s.Malformed("x", nil)
	s.Dropped("x", nil)
	s.TileEncoded()
	s.TileSkipped()
	s.PacketGenerated()
	// no panic means success
}

func TestCountersAndCallback(t *testing.T) {
	var events []Event
	s := New(func(e Event) { events = append(events, e) })
	s.Malformed("bad block", map[string]any{"col": 1})
	s.Dropped("no slot", nil)
	s.TileEncoded()
	s.TileSkipped()
	s.PacketGenerated()
	s.Info("skip", nil)

	if s.Counters.Anomalies[KindMalformed] != 1 {
		t.Fatalf("malformed count = %d, want 1", s.Counters.Anomalies[KindMalformed])
	}
	if s.Counters.Anomalies[KindDropped] != 1 {
		t.Fatalf("dropped count = %d, want 1", s.Counters.Anomalies[KindDropped])
	}
	if s.Counters.TilesEncoded != 1 || s.Counters.TilesSkipped != 1 || s.Counters.Packets != 1 {
		t.Fatalf("unexpected counters: %+v", s.Counters)
	}
	if len(events) != 3 {
		t.Fatalf("callback invocations = %d, want 3 (malformed, dropped, info)", len(events))
	}
	if s.Counters.Anomalies[KindInfo] != 0 {
		t.Fatal("info events should not be tallied as anomalies")
	}
}

func TestFatalError(t *testing.T) {
	err := &FatalError{Kind: KindIncomplete, Slot: 42, Cause: "unfilled slot"}
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}
