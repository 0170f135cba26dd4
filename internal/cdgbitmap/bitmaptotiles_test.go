package cdgbitmap

import (
	"testing"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtransition"
)

type fakeBitmap struct {
	w, h int
	fill func(x, y int) int
}

func (f fakeBitmap) Pixel(x, y int) int {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return 0
	}
	return f.fill(x, y)
}

func TestBuildAssignsSequentialPackets(t *testing.T) {
	src := fakeBitmap{w: 12, h: 24, fill: func(x, y int) int { return 1 }}
	tiles := Build(src, Options{StartPacket: 100, Transition: cdgtransition.Default(2, 2)})
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(tiles))
	}
	for i, tl := range tiles {
		if tl.PacketIndex != 100+i {
			t.Fatalf("tile %d packet index = %d, want %d", i, tl.PacketIndex, 100+i)
		}
	}
}

func TestBuildNoTransitionSharesPacket(t *testing.T) {
	src := fakeBitmap{w: 12, h: 24, fill: func(x, y int) int { return 1 }}
	tr := cdgtransition.Default(2, 2)
	tr.NoTransition = true
	tiles := Build(src, Options{StartPacket: 50, Transition: tr})
	for _, tl := range tiles {
		if tl.PacketIndex != 50 {
			t.Fatalf("expected all tiles at packet 50, got %d", tl.PacketIndex)
		}
	}
}

func TestBuildSamplesOutOfBitmapAsZero(t *testing.T) {
	src := fakeBitmap{w: 3, h: 3, fill: func(x, y int) int { return 9 }}
	tr := cdgtransition.Default(1, 1)
	tiles := Build(src, Options{Transition: tr})
	tl := tiles[0]
	if tl.Pixel(0, 0) != 9 {
		t.Fatalf("in-bounds pixel should sample source: got %d", tl.Pixel(0, 0))
	}
	if tl.Pixel(5, 5) != 0 {
		t.Fatalf("out-of-bitmap pixel should be 0: got %d", tl.Pixel(5, 5))
	}
}

func TestBuildAppliesOffsets(t *testing.T) {
	src := fakeBitmap{w: 100, h: 100, fill: func(x, y int) int { return x + y }}
	tr := cdgtransition.Default(1, 1)
	tiles := Build(src, Options{Transition: tr, XOffset: 2, YOffset: 3})
	tl := tiles[0]
	want := src.Pixel(0-2, 0-3)
	if tl.Pixel(0, 0) != want {
		t.Fatalf("offset sample = %d, want %d", tl.Pixel(0, 0), want)
	}
}

func TestBuildCopiesZAndChannel(t *testing.T) {
	src := fakeBitmap{w: 6, h: 12, fill: func(x, y int) int { return 0 }}
	tr := cdgtransition.Default(1, 1)
	tiles := Build(src, Options{Transition: tr, ZLayer: 4, Channel: 2})
	if tiles[0].ZLayer != 4 || tiles[0].Channel != 2 {
		t.Fatalf("expected zlayer=4 channel=2, got %d/%d", tiles[0].ZLayer, tiles[0].Channel)
	}
}
