// Package cdgtext implements the TextRasterizer (spec C11): rendering a
// string into an indexed-color pixel buffer that BitmapToTiles can sample,
// using a real font rasterizer rather than a bespoke bitmap-font drawer.
//
// golang.org/x/image/font (+ font/basicfont, font/opentype, math/fixed) is
// the teacher's own indirect dependency, pulled in transitively through
// fyne's text renderer (fyne-io/image, go-text/render). It is promoted here
// to a direct dependency and given the actual job the spec treats as an
// "external font/bitmap source" collaborator: font.Drawer rasterizes glyphs
// into a mask, basicfont.Face7x13 is the built-in default face, and any
// caller-supplied OTF/TTF bytes are loaded through opentype.Parse.
package cdgtext

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LoadFace parses OTF/TTF font bytes at the given point size. A nil/empty
// fontData falls back to the built-in basicfont.Face7x13 (size is ignored
// in that case — it is a fixed bitmap face).
func LoadFace(fontData []byte, size float64) (font.Face, error) {
	if len(fontData) == 0 {
		return basicfont.Face7x13, nil
	}
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("cdgtext: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size: size,
		DPI:  72,
	})
	if err != nil {
		return nil, fmt.Errorf("cdgtext: build face: %w", err)
	}
	return face, nil
}

// Params describes one text-rasterization request (spec §4.11).
type Params struct {
	Text    string
	Face    font.Face
	Width   int // declared bounding-box width in pixels
	Height  int // declared bounding-box height in pixels

	Foreground int
	Background int
	Outline    int
	HasOutline bool

	Karaoke bool
}

// Buffer is the rasterized result: an indexed-color pixel grid implementing
// cdgbitmap.Source, with out-of-bounds pixels sampled as Background.
type Buffer struct {
	Width, Height int
	pixels        []int
	Background    int
}

// Pixel implements cdgbitmap.Source.
func (b *Buffer) Pixel(x, y int) int {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return b.Background
	}
	return b.pixels[y*b.Width+x]
}

func (b *Buffer) set(x, y, v int) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.pixels[y*b.Width+x] = v
}

// Rasterize renders p.Text into a Buffer of p.Width × p.Height, word-
// wrapping at word boundaries to fit the declared width and truncating any
// overflow beyond the declared height (spec §4.11).
func Rasterize(p Params) (*Buffer, error) {
	if p.Face == nil {
		return nil, fmt.Errorf("cdgtext: rasterize: nil face")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("cdgtext: rasterize: invalid bounding box %dx%d", p.Width, p.Height)
	}

	buf := &Buffer{
		Width:      p.Width,
		Height:     p.Height,
		pixels:     make([]int, p.Width*p.Height),
		Background: p.Background,
	}
	for i := range buf.pixels {
		buf.pixels[i] = p.Background
	}

	metrics := p.Face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = 1
	}
	ascent := metrics.Ascent.Ceil()

	lines := wrap(p.Text, p.Face, p.Width)

	for lineIdx, line := range lines {
		baseline := ascent + lineIdx*lineHeight
		if baseline-ascent >= p.Height {
			break // truncate overflow beyond the declared height
		}
		drawLine(buf, p, line, baseline)
	}
	return buf, nil
}

// wrap splits text into lines no wider than maxWidth, breaking only at word
// boundaries. A single word wider than maxWidth is kept whole on its own
// line, which is then wider than maxWidth.
func wrap(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	spaceWidth := measure(face, " ")
	var lines []string
	var current string
	var currentWidth int
	for _, w := range words {
		ww := measure(face, w)
		candidateWidth := currentWidth
		if current != "" {
			candidateWidth += spaceWidth
		}
		candidateWidth += ww
		if current == "" {
			current = w
			currentWidth = ww
			continue
		}
		if candidateWidth <= maxWidth {
			current += " " + w
			currentWidth = candidateWidth
		} else {
			lines = append(lines, current)
			current = w
			currentWidth = ww
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawLine rasterizes one line of text with font.Drawer against a mask,
// then stamps the foreground (and optionally outline) index into buf based on
// the mask's alpha; other pixels keep the background Rasterize filled in.
func drawLine(buf *Buffer, p Params, line string, baseline int) {
	width := measure(p.Face, line)
	if width <= 0 {
		width = 1
	}
	metrics := p.Face.Metrics()
	height := metrics.Height.Ceil()
	if height <= 0 {
		height = 1
	}
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.Alpha{A: 255}),
		Face: p.Face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	drawer.DrawString(line)

	top := baseline - metrics.Ascent.Ceil()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := mask.AlphaAt(x, y).A
			destY := top + y
			switch {
			case a >= 200:
				buf.set(x, destY, p.Foreground)
			case p.HasOutline && a >= 40:
				buf.set(x, destY, p.Outline)
			}
		}
	}
}
