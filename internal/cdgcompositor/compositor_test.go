package cdgcompositor

import (
	"testing"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/diagnostics"
)

func TestIdempotentTransparentWrite(t *testing.T) {
	c := New(nil)
	before := c.ReadCompositedPixel(5, 5)
	c.WritePixel(5, 5, 3, cdgtile.Transparent)
	after := c.ReadCompositedPixel(5, 5)
	if before != after {
		t.Fatalf("transparent write changed pixel: %d -> %d", before, after)
	}
}

func TestLayerPriority(t *testing.T) {
	c := New(nil)
	for z := 0; z < NumLayers-1; z++ {
		c.WritePixel(10, 10, z, z+1)
	}
	c.WritePixel(10, 10, TopLayer, 99)
	if got := c.ReadCompositedPixel(10, 10); got != 99 {
		t.Fatalf("top layer should win: got %d, want 99", got)
	}
}

func TestPresetFallback(t *testing.T) {
	c := New(nil)
	c.SetPresetIndex(7)
	if got := c.ReadCompositedPixel(0, 0); got != 7 {
		t.Fatalf("fully transparent pixel = %d, want preset 7", got)
	}
}

func TestReadCompositedBlockNeverTransparent(t *testing.T) {
	c := New(nil)
	c.SetPresetIndex(2)
	block := c.ReadCompositedBlock(1, 1)
	for _, v := range block {
		if v == cdgtile.Transparent {
			t.Fatal("transparent sentinel escaped ReadCompositedBlock")
		}
		if v != 2 {
			t.Fatalf("expected preset fill 2, got %d", v)
		}
	}
}

func TestWriteBlockWrongLengthRejected(t *testing.T) {
	var events []diagnostics.Event
	sink := diagnostics.New(func(e diagnostics.Event) { events = append(events, e) })
	c := New(sink)
	before := c.ReadCompositedBlock(0, 0)
	c.WriteBlock(0, 0, 0, make([]int, 64))
	after := c.ReadCompositedBlock(0, 0)
	if before != after {
		t.Fatal("rejected block write should leave state unchanged")
	}
	if sink.Counters.Anomalies[diagnostics.KindMalformed] != 1 {
		t.Fatalf("expected 1 malformed anomaly, got %d", sink.Counters.Anomalies[diagnostics.KindMalformed])
	}
}

func TestWriteBlockAndReadBack(t *testing.T) {
	c := New(nil)
	var block cdgtile.Block
	for i := range block {
		block[i] = i % 16
	}
	c.WriteBlock(4, 2, 5, block[:])
	got := c.ReadCompositedBlock(4, 2)
	if got != block {
		t.Fatalf("read back mismatch: got %v, want %v", got, block)
	}
}

func TestClearMakesEverythingTransparentAgain(t *testing.T) {
	c := New(nil)
	c.SetPresetIndex(1)
	c.WritePixel(0, 0, 0, 9)
	c.Clear()
	if got := c.ReadCompositedPixel(0, 0); got != 1 {
		t.Fatalf("after clear, expected preset 1, got %d", got)
	}
}
