// Package cdgexport implements the Scheduler/Exporter (spec C9): the single
// coordinator that owns the Palette, VRAM, Compositor and packet-stream
// vector, expands registered clips into packets in deterministic order, and
// finalizes the result into a byte stream.
//
// The four long-lived mutable objects live inside the Exporter struct and
// are passed to collaborators only through its own method calls — there is
// no process-wide state (spec §9 "Globals are explicit"), and the whole
// pipeline runs synchronously with no locking, mirroring how
// rom.ROMBuilder.BuildROM in the teacher owns its output buffer exclusively
// across a single synchronous pass.
package cdgexport

import (
	"fmt"
	"sort"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgbitmap"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgclip"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgcompositor"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgencoder"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpacket"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpalette"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtile"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtransition"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgvram"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/diagnostics"
)

// trailingPadding is the slack appended past the last clip's end packet when
// sizing a stream that has no (or too small) explicit target duration (spec
// §4.9 "max(target_duration, max_clip_end + padding)").
const trailingPadding = 4

type registeredClip struct {
	clip  cdgclip.Clip
	index int
}

type slot struct {
	occupied bool
	packet   cdgpacket.Packet
}

// Exporter is the coordinator (spec C9). Palette, VRAM, Compositor and the
// packet-stream vector are exclusively owned here; every other component
// receives them only through Exporter's own calls (spec §5 "Shared
// resources").
type Exporter struct {
	palette     *cdgpalette.Palette
	vram        *cdgvram.VRAM
	compositor  *cdgcompositor.Compositor
	transitions *cdgtransition.Table
	sink        *diagnostics.Sink

	currentRGB6 [16]cdgpacket.RGB6

	targetDuration int
	clips          []registeredClip
	nextIndex      int
}

// New returns an exporter targeting targetDuration packets (0 or less means
// "size to fit the registered clips plus padding"). transitions and sink may
// both be nil.
func New(targetDuration int, transitions *cdgtransition.Table, sink *diagnostics.Sink) *Exporter {
	return &Exporter{
		palette:        cdgpalette.New(),
		vram:           cdgvram.New(),
		compositor:     cdgcompositor.New(sink),
		transitions:    transitions,
		sink:           sink,
		targetDuration: targetDuration,
	}
}

// Register validates c and, if accepted, adds it to the export in
// registration order (spec §4.8/§7 "clip rejected at registration").
func (e *Exporter) Register(c cdgclip.Clip) error {
	if err := c.Register(); err != nil {
		e.sink.ValidationFailed("clip rejected at registration", map[string]any{"error": err.Error()})
		return err
	}
	e.clips = append(e.clips, registeredClip{clip: c, index: e.nextIndex})
	e.nextIndex++
	return nil
}

// Export runs the full encode and returns the finalized byte stream (spec
// §4.9 Finalization / §6 ".cdg output format").
func (e *Exporter) Export() ([]byte, error) {
	stream, err := e.plan()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(stream)*cdgpacket.Size)
	for i, s := range stream {
		if !s.occupied {
			return nil, &diagnostics.FatalError{Kind: diagnostics.KindIncomplete, Slot: i, Cause: "unfilled slot at finalization"}
		}
		if s.packet.Command() != 0x09 {
			return nil, &diagnostics.FatalError{Kind: diagnostics.KindMalformed, Slot: i, Cause: "command byte is not 0x09"}
		}
		b := s.packet.Serialize()
		out = append(out, b[:]...)
	}
	return out, nil
}

// plan builds the full packet-time vector: prelude, per-clip expansion in
// (track, registration index) order, then idle padding.
func (e *Exporter) plan() ([]slot, error) {
	duration := e.targetDuration
	maxEnd := 0
	for _, rc := range e.clips {
		if end := rc.clip.EndPacket(); end > maxEnd {
			maxEnd = end
		}
	}
	if need := maxEnd + trailingPadding; need > duration {
		duration = need
	}
	if duration <= 0 {
		duration = trailingPadding
	}

	stream := make([]slot, duration)
	e.writePrelude(stream)

	ordered := append([]registeredClip(nil), e.clips...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i].clip.Track(), ordered[j].clip.Track()
		if ti != tj {
			return ti < tj
		}
		return ordered[i].index < ordered[j].index
	})

	for _, rc := range ordered {
		if err := e.expandClip(stream, rc.clip); err != nil {
			return nil, err
		}
		rc.clip.MarkPacketsEmitted()
	}
	e.padIdle(stream)
	for _, rc := range ordered {
		rc.clip.MarkFinalized()
	}
	return stream, nil
}

// writePrelude fills the fixed four-packet header (spec §4.9 Prelude).
func (e *Exporter) writePrelude(stream []slot) {
	lo, hi := e.snapshotPaletteHalves()
	stream[0] = slot{occupied: true, packet: cdgpacket.EncodePaletteEntries(cdgpacket.LoadLow, lo[:])}
	stream[1] = slot{occupied: true, packet: cdgpacket.EncodePaletteEntries(cdgpacket.LoadHigh, hi[:])}
	stream[2] = slot{occupied: true, packet: cdgpacket.NewMemoryPreset(0, 0)}
	stream[3] = slot{occupied: true, packet: cdgpacket.NewBorderPreset(0)}
}

func (e *Exporter) snapshotPaletteHalves() (lo, hi [8]cdgpacket.RGB6) {
	for i := 0; i < 8; i++ {
		r, g, b := e.palette.Get(i).RGB6()
		lo[i] = cdgpacket.RGB6{R: r, G: g, B: b}
	}
	for i := 0; i < 8; i++ {
		r, g, b := e.palette.Get(8 + i).RGB6()
		hi[i] = cdgpacket.RGB6{R: r, G: g, B: b}
	}
	return lo, hi
}

// padIdle fills every still-empty slot with the decoder-safe idle packet
// (spec §4.9 Padding / the §9 idle-packet decision).
func (e *Exporter) padIdle(stream []slot) {
	idle := cdgpacket.NewIdle()
	for i := range stream {
		if !stream[i].occupied {
			stream[i] = slot{occupied: true, packet: idle}
		}
	}
}

// scheduleSlot finds the first unoccupied slot at or after preferred (spec
// §4.9 "advances the target slot forward until an empty slot is found").
func scheduleSlot(stream []slot, preferred int) (int, bool) {
	if preferred < 0 {
		preferred = 0
	}
	for i := preferred; i < len(stream); i++ {
		if !stream[i].occupied {
			return i, true
		}
	}
	return 0, false
}

func (e *Exporter) dropPacket(preferred int) {
	e.sink.Dropped("packet could not find a free slot within target duration", map[string]any{"preferred": preferred})
}

func (e *Exporter) expandClip(stream []slot, c cdgclip.Clip) error {
	switch c.Kind() {
	case cdgclip.KindPalette:
		pc, ok := c.(*cdgclip.PaletteClip)
		if !ok {
			return fmt.Errorf("cdgexport: palette clip has unexpected type %T", c)
		}
		e.expandPalette(stream, pc)
		return nil
	case cdgclip.KindBitmap, cdgclip.KindText:
		tp, ok := c.(cdgclip.TileProducer)
		if !ok {
			return fmt.Errorf("cdgexport: bitmap/text clip does not implement TileProducer: %T", c)
		}
		return e.expandTiles(stream, tp)
	case cdgclip.KindScroll:
		sc, ok := c.(*cdgclip.ScrollClip)
		if !ok {
			return fmt.Errorf("cdgexport: scroll clip has unexpected type %T", c)
		}
		return e.expandScroll(stream, sc)
	default:
		return fmt.Errorf("cdgexport: unknown clip kind %v", c.Kind())
	}
}

// expandPalette emits the clip's LOAD_PALETTE_LO/HI pair at its start
// packet, or a sequence of dissolve steps if dissolve parameters are set
// (spec §4.9 item 1).
func (e *Exporter) expandPalette(stream []slot, c *cdgclip.PaletteClip) {
	steps := c.Dissolve.Steps
	interval := c.Dissolve.Interval
	if steps <= 0 || interval <= 0 {
		e.emitPaletteStep(stream, c.StartPacket(), c.Target)
		e.commitPalette(c.Target)
		return
	}
	from := e.currentRGB6
	for i := 0; i <= steps; i++ {
		mid := lerpPalette(from, c.Target, i, steps)
		offset := (i*interval + steps/2) / steps
		e.emitPaletteStep(stream, c.StartPacket()+offset, mid)
	}
	e.commitPalette(c.Target)
}

func (e *Exporter) emitPaletteStep(stream []slot, preferred int, colors [16]cdgpacket.RGB6) {
	loSlot, ok := scheduleSlot(stream, preferred)
	if !ok {
		e.dropPacket(preferred)
		return
	}
	stream[loSlot] = slot{occupied: true, packet: cdgpacket.EncodePaletteEntries(cdgpacket.LoadPaletteLo, colors[:8])}
	e.sink.PacketGenerated()

	hiSlot, ok := scheduleSlot(stream, loSlot+1)
	if !ok {
		e.dropPacket(preferred)
		return
	}
	stream[hiSlot] = slot{occupied: true, packet: cdgpacket.EncodePaletteEntries(cdgpacket.LoadPaletteHi, colors[8:])}
	e.sink.PacketGenerated()
}

func (e *Exporter) commitPalette(colors [16]cdgpacket.RGB6) {
	e.currentRGB6 = colors
	for i, c := range colors {
		e.palette.Set(i, cdgpalette.Color{
			R: expand6to8(c.R), G: expand6to8(c.G), B: expand6to8(c.B), A: 0xFF,
		})
	}
}

func expand6to8(v uint8) uint8 {
	return uint8(int(v) * 255 / 63)
}

func lerpPalette(from, to [16]cdgpacket.RGB6, i, steps int) [16]cdgpacket.RGB6 {
	var out [16]cdgpacket.RGB6
	for idx := range out {
		out[idx] = cdgpacket.RGB6{
			R: lerp6(from[idx].R, to[idx].R, i, steps),
			G: lerp6(from[idx].G, to[idx].G, i, steps),
			B: lerp6(from[idx].B, to[idx].B, i, steps),
		}
	}
	return out
}

func lerp6(a, b uint8, i, steps int) uint8 {
	if steps <= 0 {
		return b
	}
	delta := int(b) - int(a)
	return uint8(int(a) + delta*i/steps)
}

// expandTiles drives BitmapToTiles → Compositor → VRAM-compare → TileEncoder
// for a Bitmap or Text clip (spec §4.9 item 2).
func (e *Exporter) expandTiles(stream []slot, c cdgclip.TileProducer) error {
	return e.expandTilesAt(stream, c, c.StartPacket()+c.DrawDelay())
}

// expandTilesAt is expandTiles with an explicit start packet, used by
// expandScroll to re-issue a scroll clip's tiles at each interval boundary
// rather than only at the clip's original start time.
func (e *Exporter) expandTilesAt(stream []slot, c cdgclip.TileProducer, startPacket int) error {
	transition, err := c.ResolveTransition(e.transitions)
	if err != nil {
		e.sink.ValidationFailed("unknown transition, clip skipped", map[string]any{"error": err.Error()})
		return nil
	}
	xOff, yOff := c.Offsets()
	tiles := cdgbitmap.Build(c, cdgbitmap.Options{
		StartPacket: startPacket,
		XOffset:     xOff,
		YOffset:     yOff,
		ZLayer:      c.ZLayer(),
		Channel:     c.Channel(),
		Transition:  transition,
	})
	for _, tl := range tiles {
		e.emitTile(stream, tl, c.XorOnly())
	}
	return nil
}

// emitTile composites one tile, compares it to VRAM, and — if it changed —
// encodes and schedules the resulting packets (spec §4.6 Block-skip rule,
// §4.9 item 2).
func (e *Exporter) emitTile(stream []slot, tl *cdgtile.Tile, xorOnly bool) {
	block := tl.Block()
	e.compositor.WriteBlock(tl.Col, tl.Row, tl.ZLayer, block[:])
	composited := e.compositor.ReadCompositedBlock(tl.Col, tl.Row)

	if e.vram.BlockMatches(tl.Col, tl.Row, composited) {
		e.sink.TileSkipped()
		return
	}

	packets := cdgencoder.Encode(composited, tl.Row, tl.Col)
	if xorOnly {
		for i, p := range packets {
			if p.Instruction() == cdgpacket.TileCopy {
				p.SetInstruction(cdgpacket.TileXor)
			}
			packets[i] = p
		}
	}

	preferred := tl.PacketIndex
	for _, p := range packets {
		idx, ok := scheduleSlot(stream, preferred)
		if !ok {
			e.dropPacket(preferred)
			continue
		}
		stream[idx] = slot{occupied: true, packet: p}
		e.sink.PacketGenerated()
		preferred = idx + 1
	}
	e.vram.WriteBlock(tl.Col, tl.Row, composited)
	e.sink.TileEncoded()
}

// expandScroll issues a SCROLL_PRESET at each interval boundary and then
// re-issues the clip's tiles sampled at that interval's scrolled offset
// (spec §4.9 item 3: "at each interval boundary, issue a SCROLL_PRESET
// packet... then re-issue affected tiles"). The clip's own Direction/Wrap
// fields (spec §4.8 Scroll variant) drive how the sample offset steps.
func (e *Exporter) expandScroll(stream []slot, c *cdgclip.ScrollClip) error {
	xOff, yOff := c.Offsets()
	for t := c.StartPacket(); t < c.EndPacket(); t += c.IntervalPackets {
		idx, ok := scheduleSlot(stream, t)
		if !ok {
			e.dropPacket(t)
		} else {
			stream[idx] = slot{occupied: true, packet: cdgpacket.NewScrollPreset(c.FillColor, c.HStep, c.VStep)}
			e.sink.PacketGenerated()
		}

		c.SetOffsets(stepScrollOffset(c, xOff, yOff))
		xOff, yOff = c.Offsets()
		if err := e.expandTilesAt(stream, c, t); err != nil {
			return err
		}
	}
	return nil
}

// stepScrollOffset advances (xOff,yOff) by one interval's HStep/VStep along
// c.Direction, wrapping modulo the clip's own dimensions when c.Wrap is set.
func stepScrollOffset(c *cdgclip.ScrollClip, xOff, yOff int) (int, int) {
	switch c.Direction {
	case cdgclip.ScrollUp:
		yOff -= int(c.VStep)
	case cdgclip.ScrollDown:
		yOff += int(c.VStep)
	case cdgclip.ScrollLeft:
		xOff -= int(c.HStep)
	case cdgclip.ScrollRight:
		xOff += int(c.HStep)
	}
	if c.Wrap {
		w, h := c.Dimensions()
		xOff = wrapMod(xOff, w)
		yOff = wrapMod(yOff, h)
	}
	return xOff, yOff
}

func wrapMod(v, m int) int {
	if m <= 0 {
		return v
	}
	v %= m
	if v < 0 {
		v += m
	}
	return v
}
