// Package cdgvram implements the 300×216 decoder-state mirror (spec C4): the
// authoring side's copy of what a real CD+G decoder currently displays,
// updated one 6×12 block at a time as the Scheduler emits drawing packets.
package cdgvram

import "github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"

const (
	Width  = 300
	Height = 216

	tileCols = Width / cdgtile.Width   // 50
	tileRows = Height / cdgtile.Height // 18
)

// VRAM is the decoder-state mirror. The Scheduler is its single logical
// owner per tick; readers receive values by copy.
type VRAM struct {
	pixels [Width * Height]uint8
}

// New returns a VRAM buffer initialized to index 0, as the prelude
// establishes (spec §3 Lifecycle).
func New() *VRAM {
	return &VRAM{}
}

// ReadPixel returns the palette index at (x,y), or 0 if out of bounds.
func (v *VRAM) ReadPixel(x, y int) uint8 {
	if !inBounds(x, y) {
		return 0
	}
	return v.pixels[y*Width+x]
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// ReadBlock returns the 6×12 indexed region at tile (col,row), row-major.
// Out-of-range tile coordinates return a zero-filled block.
func (v *VRAM) ReadBlock(col, row int) cdgtile.Block {
	var out cdgtile.Block
	if col < 0 || col >= tileCols || row < 0 || row >= tileRows {
		return out
	}
	baseX := col * cdgtile.Width
	baseY := row * cdgtile.Height
	for y := 0; y < cdgtile.Height; y++ {
		for x := 0; x < cdgtile.Width; x++ {
			out[y*cdgtile.Width+x] = int(v.pixels[(baseY+y)*Width+(baseX+x)])
		}
	}
	return out
}

// BlockMatches reports whether the stored region at (col,row) equals
// candidate element-wise.
func (v *VRAM) BlockMatches(col, row int, candidate cdgtile.Block) bool {
	return v.ReadBlock(col, row) == candidate
}

// WriteBlock replaces the entire 6×12 region at (col,row) with block.
// Out-of-bounds tile coordinates are silently rejected.
func (v *VRAM) WriteBlock(col, row int, block cdgtile.Block) {
	if col < 0 || col >= tileCols || row < 0 || row >= tileRows {
		return
	}
	baseX := col * cdgtile.Width
	baseY := row * cdgtile.Height
	for y := 0; y < cdgtile.Height; y++ {
		for x := 0; x < cdgtile.Width; x++ {
			v.pixels[(baseY+y)*Width+(baseX+x)] = uint8(block[y*cdgtile.Width+x])
		}
	}
}

// TileColumns is the number of 6-pixel-wide tile columns (50).
func TileColumns() int { return tileCols }

// TileRows is the number of 12-pixel-tall tile rows (18).
func TileRows() int { return tileRows }
