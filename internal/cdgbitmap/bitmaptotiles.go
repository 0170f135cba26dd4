// Package cdgbitmap implements BitmapToTiles (spec C7): sampling a bitmap
// buffer into an ordered sequence of 6×12 tiles following a transition
// mask, each tile stamped with its scheduled packet index.
package cdgbitmap

import (
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtransition"
)

// Source is the pixel-sampling interface a clip's bitmap buffer must
// satisfy; out-of-bounds samples are the source's own responsibility to
// fill (spec §4.7 "out-of-bitmap pixels set to color 0").
type Source interface {
	Pixel(x, y int) int
}

// Options carries the per-clip parameters BitmapToTiles needs beyond the
// pixel source itself (spec §4.7/§4.8: track z-layer/channel, offsets,
// start packet, transition).
type Options struct {
	StartPacket int
	XOffset     int
	YOffset     int
	ZLayer      int
	Channel     int
	Transition  *cdgtransition.Transition
}

// Build samples src into an ordered list of tiles following opts.Transition
// (or row-major default if nil), one tile per transition position.
func Build(src Source, opts Options) []*cdgtile.Tile {
	transition := opts.Transition
	if transition == nil {
		transition = cdgtransition.Default(50, 18)
	}

	tiles := make([]*cdgtile.Tile, 0, len(transition.Order))
	for i, pos := range transition.Order {
		packetIndex := opts.StartPacket
		if !transition.NoTransition {
			packetIndex += i
		}

		tl := cdgtile.New()
		tl.Col, tl.Row = pos.Col, pos.Row
		tl.PacketIndex = packetIndex
		tl.ZLayer = opts.ZLayer
		tl.Channel = opts.Channel

		originX := pos.Col*cdgtile.Width - opts.XOffset
		originY := pos.Row*cdgtile.Height - opts.YOffset
		for y := 0; y < cdgtile.Height; y++ {
			for x := 0; x < cdgtile.Width; x++ {
				tl.SetPixel(x, y, src.Pixel(originX+x, originY+y))
			}
		}

		tiles = append(tiles, tl)
	}
	return tiles
}
