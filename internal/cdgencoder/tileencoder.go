// Package cdgencoder implements the TileEncoder (spec C6): decomposing a
// fully-opaque, composited 72-pixel block into the minimal 1..4 packet
// sequence (COPY + XOR bitplanes) that reproduces it on a real decoder,
// regardless of which 16 palette entries are in play.
package cdgencoder

import (
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpacket"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"
)

// Encode decomposes block into the packet sequence targeting tile
// (col,row). row and col are clamped to the packet format's valid ranges by
// cdgpacket itself.
func Encode(block cdgtile.Block, row, col int) []cdgpacket.Packet {
	colors := distinctColors(block)
	switch {
	case len(colors) <= 1:
		v := uint8(0)
		if len(colors) == 1 {
			v = uint8(colors[0])
		}
		var rows cdgpacket.TileBlock
		for i := range rows {
			rows[i] = 0x3F
		}
		return []cdgpacket.Packet{cdgpacket.NewTileCopy(v, v, row, col, rows)}

	case len(colors) == 2:
		a, b := uint8(colors[0]), uint8(colors[1])
		rows := bitRows(block, func(v int) bool { return v == colors[1] })
		return []cdgpacket.Packet{cdgpacket.NewTileCopy(a, b, row, col, rows)}

	default:
		return encodeBitplanes(block, row, col)
	}
}

func distinctColors(block cdgtile.Block) []int {
	seen := make(map[int]bool, 8)
	var out []int
	for _, v := range block {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	// insertion sort, ascending — tiny input
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// encodeBitplanes emits one packet per set bit position (0..3) that is set
// in at least one pixel's color index, lowest bit first. The first
// non-empty plane is a TILE_COPY (color0=0); every subsequent non-empty
// plane is a TILE_XOR. Tie-break: lowest bit index goes first, per spec.
func encodeBitplanes(block cdgtile.Block, row, col int) []cdgpacket.Packet {
	var packets []cdgpacket.Packet
	first := true
	for p := 0; p < 4; p++ {
		bit := uint8(1 << p)
		rows := bitRows(block, func(v int) bool { return v&(1<<p) != 0 })
		if rows == (cdgpacket.TileBlock{}) {
			continue // empty plane, nothing set at this bit position
		}
		if first {
			packets = append(packets, cdgpacket.NewTileCopy(0, bit, row, col, rows))
			first = false
		} else {
			packets = append(packets, cdgpacket.NewTileXor(0, bit, row, col, rows))
		}
	}
	return packets
}

// bitRows builds the 12-row, 6-bit-per-row bitmask (MSB = leftmost column)
// marking every pixel for which match returns true.
func bitRows(block cdgtile.Block, match func(v int) bool) cdgpacket.TileBlock {
	var rows cdgpacket.TileBlock
	for y := 0; y < cdgtile.Height; y++ {
		var r uint8
		for x := 0; x < cdgtile.Width; x++ {
			if match(block[y*cdgtile.Width+x]) {
				r |= 1 << uint(cdgtile.Width-1-x)
			}
		}
		rows[y] = r
	}
	return rows
}
