package palettebmp

import (
	"encoding/binary"
	"testing"
)

// buildBMP assembles a minimal synthetic 8bpp BMP: 14-byte file header, a
// 40-byte BITMAPINFOHEADER, a 16-entry (B,G,R,reserved) color table, and a
// single padded pixel row. Byte 10..13 ("dib offset") is set to the DIB
// header size (40) so the literal spec §6 formula `14 + dib_offset + i*4`
// lands exactly on the color table's real position.
func buildBMP(bpp int, colors [][3]byte) []byte {
	const dibOffset = 40
	colorTableLen := len(colors) * 4
	buf := make([]byte, 14+dibOffset+colorTableLen+4) // +4 for one padded pixel row

	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[10:14], uint32(dibOffset))
	binary.LittleEndian.PutUint32(buf[14:18], dibOffset) // biSize
	binary.LittleEndian.PutUint32(buf[18:22], 1)          // biWidth
	binary.LittleEndian.PutUint32(buf[22:26], 1)          // biHeight
	binary.LittleEndian.PutUint16(buf[26:28], 1)          // biPlanes
	binary.LittleEndian.PutUint16(buf[28:30], uint16(bpp))
	binary.LittleEndian.PutUint32(buf[46:50], uint32(len(colors))) // biClrUsed

	base := 14 + dibOffset
	for i, c := range colors {
		off := base + i*4
		buf[off] = c[2]   // B
		buf[off+1] = c[1] // G
		buf[off+2] = c[0] // R
	}
	return buf
}

func TestLoadRejectsNonBMP(t *testing.T) {
	if _, err := Load([]byte("not a bmp at all, too short")); err == nil {
		t.Fatal("expected rejection of non-BMP input")
	}
}

func TestLoadRejectsHighBitDepth(t *testing.T) {
	data := buildBMP(24, nil)
	_, err := Load(data)
	if err == nil {
		t.Fatal("expected rejection of >8bpp BMP")
	}
	var bppErr *BppError
	if be, ok := err.(*BppError); ok {
		bppErr = be
	}
	if bppErr == nil || bppErr.Bpp != 24 {
		t.Fatalf("expected BppError{Bpp:24}, got %v", err)
	}
}

func TestLoadExtractsAndQuantizesPalette(t *testing.T) {
	colors := [][3]byte{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	}
	data := buildBMP(8, colors)
	entries, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entries[0].R != 63 || entries[0].G != 0 || entries[0].B != 0 {
		t.Fatalf("entry 0 = %+v, want red quantized to 63/0/0", entries[0])
	}
	if entries[1].G != 63 {
		t.Fatalf("entry 1 green = %d, want 63", entries[1].G)
	}
	if entries[2].B != 63 {
		t.Fatalf("entry 2 blue = %d, want 63", entries[2].B)
	}
}

func TestLoadPadsShortPaletteWithBlack(t *testing.T) {
	colors := [][3]byte{{255, 255, 255}}
	data := buildBMP(8, colors)
	entries, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].R != 0 || entries[i].G != 0 || entries[i].B != 0 {
			t.Fatalf("entry %d = %+v, want black padding", i, entries[i])
		}
	}
}
