// Package cdgclip implements the ClipModel (spec C8): the four clip kinds
// (Bitmap, Palette, Text, Scroll) as a closed tagged union with a common
// scheduling interface, plus the registration state machine the Scheduler
// drives each clip through.
//
// Modeling the kinds as a sum with one shared interface replaces the class
// hierarchies and runtime downcasts a source built around clip subclassing
// would use (spec §9 "Tagged variants for clips").
package cdgclip

import (
	"fmt"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpacket"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtext"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtransition"
)

// State is a clip's position in the registration state machine (spec §4.8):
// Unscheduled -> Registered -> PacketsEmitted -> Finalized.
type State int

const (
	StateUnscheduled State = iota
	StateRegistered
	StatePacketsEmitted
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateUnscheduled:
		return "unscheduled"
	case StateRegistered:
		return "registered"
	case StatePacketsEmitted:
		return "packets_emitted"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Kind identifies which of the four clip variants a Clip value is.
type Kind int

const (
	KindBitmap Kind = iota
	KindPalette
	KindText
	KindScroll
)

// Clip is the minimal interface the Scheduler requires of every clip kind
// (spec §4.8/§6 "Project input").
type Clip interface {
	Kind() Kind
	Track() int
	Channel() int
	StartPacket() int
	Duration() int
	EndPacket() int
	State() State
	Register() error
	MarkPacketsEmitted()
	MarkFinalized()
	Clone() Clip
}

// TileProducer is implemented by clip kinds whose content is expressed as a
// pixel buffer BitmapToTiles can sample (Bitmap, Text, Scroll).
type TileProducer interface {
	Clip
	Pixel(x, y int) int
	Dimensions() (width, height int)
	ZLayer() int
	Offsets() (x, y int)
	DrawDelay() int
	XorOnly() bool
	ResolveTransition(table *cdgtransition.Table) (*cdgtransition.Transition, error)
}

// base holds the scheduling fields common to every clip kind.
type base struct {
	track, channel  int
	start, duration int
	state           State
}

func (b *base) Track() int          { return b.track }
func (b *base) Channel() int        { return b.channel }
func (b *base) StartPacket() int    { return b.start }
func (b *base) Duration() int       { return b.duration }
func (b *base) EndPacket() int      { return b.start + b.duration }
func (b *base) State() State        { return b.state }
func (b *base) MarkPacketsEmitted() { b.state = StatePacketsEmitted }
func (b *base) MarkFinalized()      { b.state = StateFinalized }

// checkRegister enforces the universal registration rule: duration must be
// positive, and a clip may only be registered once (spec §4.8).
func (b *base) checkRegister() error {
	if b.state != StateUnscheduled {
		return fmt.Errorf("cdgclip: clip already %s, cannot re-register", b.state)
	}
	if b.duration <= 0 {
		return fmt.Errorf("cdgclip: duration must be > 0, got %d", b.duration)
	}
	return nil
}

// BitmapClip is a fixed-size indexed-color pixel buffer painted onto the
// Compositor over its lifetime (spec §4.8 Bitmap variant).
type BitmapClip struct {
	base

	width, height int
	pixels        []int

	zLayer         int
	xOffset        int
	yOffset        int
	xorOnly        bool
	transitionName string
	drawDelay      int
}

// NewBitmap constructs an unregistered bitmap clip of the given pixel
// dimensions, every pixel initialized to color 0.
func NewBitmap(track, channel, start, duration, width, height int) *BitmapClip {
	return &BitmapClip{
		base:   base{track: track, channel: channel, start: start, duration: duration},
		width:  width,
		height: height,
		pixels: make([]int, width*height),
	}
}

// Kind implements Clip.
func (c *BitmapClip) Kind() Kind { return KindBitmap }

// Dimensions implements TileProducer.
func (c *BitmapClip) Dimensions() (int, int) { return c.width, c.height }

// ZLayer implements TileProducer.
func (c *BitmapClip) ZLayer() int { return c.zLayer }

// SetZLayer sets the Compositor layer this clip paints into.
func (c *BitmapClip) SetZLayer(z int) { c.zLayer = z }

// Offsets implements TileProducer.
func (c *BitmapClip) Offsets() (int, int) { return c.xOffset, c.yOffset }

// SetOffsets sets the pixel offset subtracted from each tile's sample origin
// (spec §4.7 "pixel origin (col*6 - x_offset, row*12 - y_offset)").
func (c *BitmapClip) SetOffsets(x, y int) { c.xOffset, c.yOffset = x, y }

// DrawDelay implements TileProducer: an extra packet offset applied before
// the clip's first tile is scheduled.
func (c *BitmapClip) DrawDelay() int { return c.drawDelay }

// SetDrawDelay sets the draw delay.
func (c *BitmapClip) SetDrawDelay(d int) { c.drawDelay = d }

// XorOnly implements TileProducer: when true, BitmapToTiles-produced tiles
// always flow through TILE_XOR rather than TILE_COPY against VRAM.
func (c *BitmapClip) XorOnly() bool { return c.xorOnly }

// SetXorOnly sets the XOR-only flag.
func (c *BitmapClip) SetXorOnly(v bool) { c.xorOnly = v }

// SetTransitionName names the transition this clip's tiles are ordered by;
// the empty string resolves to the row-major default.
func (c *BitmapClip) SetTransitionName(name string) { c.transitionName = name }

// ResolveTransition implements TileProducer.
func (c *BitmapClip) ResolveTransition(table *cdgtransition.Table) (*cdgtransition.Transition, error) {
	return table.Lookup(c.transitionName, 50, 18)
}

// SetPixel stores v at (x,y); out-of-range coordinates are ignored.
func (c *BitmapClip) SetPixel(x, y, v int) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.pixels[y*c.width+x] = v
}

// Pixel implements TileProducer / cdgbitmap.Source: fill-on-OOB returns 0.
func (c *BitmapClip) Pixel(x, y int) int {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return 0
	}
	return c.pixels[y*c.width+x]
}

// Register validates and transitions the clip Unscheduled -> Registered.
func (c *BitmapClip) Register() error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("cdgclip: bitmap clip missing width/height")
	}
	c.state = StateRegistered
	return nil
}

// Clone returns an independent deep copy with a fresh pixel buffer.
func (c *BitmapClip) Clone() Clip {
	cp := *c
	cp.pixels = append([]int(nil), c.pixels...)
	return &cp
}

// PaletteClip is an instantaneous (or dissolve-spread) palette change (spec
// §4.8/§4.9 "If the clip carries a palette change").
type PaletteClip struct {
	base

	Target   [16]cdgpacket.RGB6
	Dissolve struct {
		Interval int
		Steps    int
	}
}

// NewPalette constructs an unregistered palette clip targeting the given 16
// entries.
func NewPalette(track, channel, start, duration int, target [16]cdgpacket.RGB6) *PaletteClip {
	return &PaletteClip{
		base:   base{track: track, channel: channel, start: start, duration: duration},
		Target: target,
	}
}

// Kind implements Clip.
func (c *PaletteClip) Kind() Kind { return KindPalette }

// SetDissolve configures a multi-step fade spread over interval packets.
func (c *PaletteClip) SetDissolve(interval, steps int) {
	c.Dissolve.Interval = interval
	c.Dissolve.Steps = steps
}

// Register validates and transitions the clip Unscheduled -> Registered.
func (c *PaletteClip) Register() error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	c.state = StateRegistered
	return nil
}

// Clone returns an independent deep copy.
func (c *PaletteClip) Clone() Clip {
	cp := *c
	return &cp
}

// TextClip rasterizes text into a bitmap buffer at construction time and
// behaves like a BitmapClip from the Scheduler's point of view, always
// traveling through a no-transition ordering so every glyph tile shares one
// packet tick (spec §4.11).
type TextClip struct {
	BitmapClip

	Text       string
	Foreground int
	Background int
	Outline    int
	HasOutline bool
	Karaoke    bool
}

// NewText rasterizes params into a TextClip ready for registration.
func NewText(track, channel, start, duration int, params cdgtext.Params) (*TextClip, error) {
	buf, err := cdgtext.Rasterize(params)
	if err != nil {
		return nil, fmt.Errorf("cdgclip: new text clip: %w", err)
	}
	tc := &TextClip{
		BitmapClip: BitmapClip{
			base:   base{track: track, channel: channel, start: start, duration: duration},
			width:  buf.Width,
			height: buf.Height,
			pixels: make([]int, buf.Width*buf.Height),
		},
		Text:       params.Text,
		Foreground: params.Foreground,
		Background: params.Background,
		Outline:    params.Outline,
		HasOutline: params.HasOutline,
		Karaoke:    params.Karaoke,
	}
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			tc.SetPixel(x, y, buf.Pixel(x, y))
		}
	}
	return tc, nil
}

// Kind implements Clip.
func (c *TextClip) Kind() Kind { return KindText }

// ResolveTransition always returns a no-transition ordering: every text tile
// shares one packet time (spec §4.7 "no_transition=true is used by text
// clips so all their blocks share one tick").
func (c *TextClip) ResolveTransition(table *cdgtransition.Table) (*cdgtransition.Transition, error) {
	tr, err := c.BitmapClip.ResolveTransition(table)
	if err != nil {
		return nil, err
	}
	forced := *tr
	forced.NoTransition = true
	return &forced, nil
}

// Clone returns an independent deep copy.
func (c *TextClip) Clone() Clip {
	cp := *c
	cp.BitmapClip = *c.BitmapClip.Clone().(*BitmapClip)
	return &cp
}

// ScrollDirection names the axis and sign a ScrollClip's content steps along
// at each interval boundary (spec §4.8 Scroll variant: "a direction
// (none/up/down/left/right)").
type ScrollDirection uint8

const (
	ScrollNone ScrollDirection = iota
	ScrollUp
	ScrollDown
	ScrollLeft
	ScrollRight
)

// ScrollClip behaves like a bitmap clip that additionally issues periodic
// SCROLL_PRESET packets (spec §4.9 "For Scroll: at each interval boundary").
type ScrollClip struct {
	BitmapClip

	HStep           uint8
	VStep           uint8
	IntervalPackets int
	FillColor       uint8
	Direction       ScrollDirection
	Wrap            bool
}

// NewScroll constructs an unregistered scroll clip.
func NewScroll(track, channel, start, duration, width, height int) *ScrollClip {
	return &ScrollClip{
		BitmapClip: *NewBitmap(track, channel, start, duration, width, height),
	}
}

// Kind implements Clip.
func (c *ScrollClip) Kind() Kind { return KindScroll }

// Register additionally requires a positive interval between scroll steps.
func (c *ScrollClip) Register() error {
	if err := c.BitmapClip.checkRegister(); err != nil {
		return err
	}
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("cdgclip: scroll clip missing width/height")
	}
	if c.IntervalPackets <= 0 {
		return fmt.Errorf("cdgclip: scroll clip requires a positive interval")
	}
	c.state = StateRegistered
	return nil
}

// Clone returns an independent deep copy.
func (c *ScrollClip) Clone() Clip {
	cp := *c
	cp.BitmapClip = *c.BitmapClip.Clone().(*BitmapClip)
	return &cp
}
