// Package cdgcompositor implements the authoring-side multi-layer buffer
// (spec C5) that combines clips before encoding: 8 stacked 300×216 layers,
// top-opaque-wins compositing, with a process-wide preset index as the
// fallback when every layer is transparent at a pixel.
//
// The layer-stack/blend-order shape follows the register-and-blend pattern
// other_examples' standalone IntuitionEngine video_compositor.go uses for
// its multi-source video compositor (collect per-source frames, blend in
// z-order, single output) — collapsed here to a single-threaded, no-locking
// form since the whole pipeline is an offline batch pass (spec §5).
package cdgcompositor

import (
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/diagnostics"
)

const (
	Width     = 300
	Height    = 216
	NumLayers = 8

	// TopLayer is the highest-priority layer index; layer 0 is bottom.
	TopLayer = NumLayers - 1
)

// Compositor is the 8-layer, 300×216 transparency-aware pixel buffer.
type Compositor struct {
	layers [NumLayers][Width * Height]int
	preset int
	sink   *diagnostics.Sink
}

// New returns a compositor with every layer fully transparent and preset
// index 0.
func New(sink *diagnostics.Sink) *Compositor {
	c := &Compositor{sink: sink}
	c.Clear()
	return c
}

// SetPresetIndex sets the palette index returned when every layer is
// transparent at a pixel.
func (c *Compositor) SetPresetIndex(index int) { c.preset = index }

// Clear makes every pixel on every layer transparent.
func (c *Compositor) Clear() {
	for z := range c.layers {
		for i := range c.layers[z] {
			c.layers[z][i] = cdgtile.Transparent
		}
	}
}

// WritePixel stores v in layer z at (x,y). Passing cdgtile.Transparent
// disables this pixel on that layer. Out-of-range coordinates or layers are
// silently ignored.
func (c *Compositor) WritePixel(x, y, z, v int) {
	if !inBounds(x, y) || z < 0 || z >= NumLayers {
		return
	}
	c.layers[z][y*Width+x] = v
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// WriteBlock stores a 72-pixel block into layer z at tile (col,row). A
// block whose length is not 72 is rejected with a diagnostic warning and
// leaves the compositor state unchanged (spec §7 "Block length mismatch").
func (c *Compositor) WriteBlock(col, row, z int, block []int) {
	if len(block) != cdgtile.Count {
		if c.sink != nil {
			c.sink.Malformed("compositor block write: wrong length", map[string]any{
				"col": col, "row": row, "z": z, "len": len(block),
			})
		}
		return
	}
	if z < 0 || z >= NumLayers {
		return
	}
	baseX := col * cdgtile.Width
	baseY := row * cdgtile.Height
	for y := 0; y < cdgtile.Height; y++ {
		for x := 0; x < cdgtile.Width; x++ {
			px, py := baseX+x, baseY+y
			if !inBounds(px, py) {
				continue
			}
			c.layers[z][py*Width+px] = block[y*cdgtile.Width+x]
		}
	}
}

// ReadCompositedPixel scans layers top (7) to bottom (0) and returns the
// first non-transparent value, else the preset index. The transparent
// sentinel never escapes this call.
func (c *Compositor) ReadCompositedPixel(x, y int) int {
	if !inBounds(x, y) {
		return c.preset
	}
	idx := y*Width + x
	for z := TopLayer; z >= 0; z-- {
		if v := c.layers[z][idx]; v != cdgtile.Transparent {
			return v
		}
	}
	return c.preset
}

// ReadCompositedBlock applies ReadCompositedPixel pixelwise across the 6×12
// tile at (col,row), row-major.
func (c *Compositor) ReadCompositedBlock(col, row int) cdgtile.Block {
	var out cdgtile.Block
	baseX := col * cdgtile.Width
	baseY := row * cdgtile.Height
	for y := 0; y < cdgtile.Height; y++ {
		for x := 0; x < cdgtile.Width; x++ {
			out[y*cdgtile.Width+x] = c.ReadCompositedPixel(baseX+x, baseY+y)
		}
	}
	return out
}
