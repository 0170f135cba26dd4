// Package cdgpacket implements the 24-byte CD+G subcode record (spec C1):
// command byte, masked instruction, a 16-byte payload, and the Q/P parity
// bytes the authoring side always writes as zero.
package cdgpacket

import (
	"fmt"
)

const (
	// Size is the fixed on-wire length of a CD+G subcode packet.
	Size = 24

	commandTVGraphics = 0x09

	payloadOffset = 4
	payloadLen    = 16
)

// Instruction identifies the CD+G command carried in a packet's instruction
// byte (low 6 bits). LoadLow/LoadHigh are private authoring-side markers used
// only to tag the prelude; a real decoder never sees them distinguished from
// LoadPaletteLo/LoadPaletteHi.
type Instruction uint8

const (
	MemoryPreset     Instruction = 0x01
	BorderPreset     Instruction = 0x02
	LoadPaletteLo    Instruction = 0x04
	TileCopy         Instruction = 0x06
	ScrollPreset     Instruction = 0x08
	LoadPaletteHi    Instruction = 0x0C
	LoadLow          Instruction = 0x0E
	LoadHigh         Instruction = 0x1E
	TransparentColor Instruction = 0x1F
	TileXor          Instruction = 0x26
)

func recognized(i Instruction) bool {
	switch i {
	case MemoryPreset, BorderPreset, LoadPaletteLo, TileCopy, ScrollPreset,
		LoadPaletteHi, LoadLow, LoadHigh, TransparentColor, TileXor:
		return true
	}
	return false
}

// Packet is a single 24-byte CD+G subcode record.
type Packet struct {
	command     uint8
	instruction uint8
	payload     [payloadLen]uint8
}

// New returns a zeroed packet: command 0x09, instruction 0, all payload and
// parity bytes zero.
func New() Packet {
	return Packet{command: commandTVGraphics}
}

// Command returns the packet's command byte.
func (p Packet) Command() uint8 { return p.command }

// SetCommand sets the command byte. Any value other than the 0x09 TV
// graphics command is stored as 0x09 — the format has no other command defined.
func (p *Packet) SetCommand(v uint8) {
	if v != commandTVGraphics {
		v = commandTVGraphics
	}
	p.command = v
}

// Instruction returns the low 6 bits of the instruction byte.
func (p Packet) Instruction() Instruction {
	return Instruction(p.instruction & 0x3F)
}

// SetInstruction stores the low 6 bits of v as the instruction opcode.
func (p *Packet) SetInstruction(v Instruction) {
	p.instruction = uint8(v) & 0x3F
}

// DataByte returns payload byte i, or 0 if i is out of range.
func (p Packet) DataByte(i int) uint8 {
	if i < 0 || i >= payloadLen {
		return 0
	}
	return p.payload[i]
}

// SetDataByte stores v at payload byte i; out-of-range i is ignored.
func (p *Packet) SetDataByte(i int, v uint8) {
	if i < 0 || i >= payloadLen {
		return
	}
	p.payload[i] = v
}

// IsRecognized reports whether the packet's instruction is one of the
// recognized CD+G (or private prelude-marker) opcodes.
func (p Packet) IsRecognized() bool {
	return recognized(p.Instruction())
}

// Serialize writes the packet's fixed 24-byte wire layout: command, masked
// instruction, zero parity Q, 16 payload bytes, zero parity P.
func (p Packet) Serialize() [Size]byte {
	var buf [Size]byte
	buf[0] = p.command
	buf[1] = p.instruction & 0x3F
	// buf[2], buf[3] parity Q stays zero.
	copy(buf[payloadOffset:payloadOffset+payloadLen], p.payload[:])
	// buf[20..23] parity P stays zero.
	return buf
}

// Deserialize parses a packet from buf, which must be at least Size bytes.
func Deserialize(buf []byte) (Packet, error) {
	if len(buf) < Size {
		return Packet{}, fmt.Errorf("cdgpacket: deserialize: buffer too short: %d < %d", len(buf), Size)
	}
	var p Packet
	p.command = buf[0]
	p.instruction = buf[1] & 0x3F
	copy(p.payload[:], buf[payloadOffset:payloadOffset+payloadLen])
	return p, nil
}

// NewIdle returns the decoder-safe no-op idle packet: MEMORY_PRESET with
// fill color 0 and repeat index 0x0F. This is the fixed resolution of the
// "two different default idle-packet encodings" open question (spec §9).
func NewIdle() Packet {
	p := New()
	p.SetInstruction(MemoryPreset)
	p.SetDataByte(0, 0)
	p.SetDataByte(1, 0x0F)
	return p
}

// NewMemoryPreset builds a MEMORY_PRESET packet: fill color (low 4 bits) and
// a repeat index (low 4 bits), used by the prelude and for padding.
func NewMemoryPreset(fillColor, repeatIndex uint8) Packet {
	p := New()
	p.SetInstruction(MemoryPreset)
	p.SetDataByte(0, fillColor&0x0F)
	p.SetDataByte(1, repeatIndex&0x0F)
	return p
}

// NewBorderPreset builds a BORDER_PRESET packet with the given border color.
func NewBorderPreset(borderColor uint8) Packet {
	p := New()
	p.SetInstruction(BorderPreset)
	p.SetDataByte(0, borderColor&0x0F)
	return p
}

// NewTransparentColor builds a TRANSPARENT_COLOR packet naming the palette
// index to treat as transparent.
func NewTransparentColor(index uint8) Packet {
	p := New()
	p.SetInstruction(TransparentColor)
	p.SetDataByte(0, index&0x0F)
	return p
}

// NewScrollPreset builds a SCROLL_PRESET packet with quantised horizontal
// and vertical scroll commands.
func NewScrollPreset(color, hScrollCmd, vScrollCmd uint8) Packet {
	p := New()
	p.SetInstruction(ScrollPreset)
	p.SetDataByte(0, color)
	p.SetDataByte(1, hScrollCmd)
	p.SetDataByte(2, vScrollCmd)
	return p
}

// TileBlock is the 12-row, 6-bit-per-row bitmask payload a TILE_COPY/XOR
// packet carries: row i's low 6 bits select which of the tile's 6 columns
// (MSB = leftmost) belong to color1 (COPY) or are XORed (XOR).
type TileBlock = [12]uint8

// NewTileCopy builds a TILE_COPY packet: two 4-bit colors, a clamped
// (row, column) target, and 12 row bitmasks (low 6 bits each).
func NewTileCopy(color0, color1 uint8, row, col int, rows TileBlock) Packet {
	return newTilePacket(TileCopy, color0, color1, row, col, rows)
}

// NewTileXor builds a TILE_XOR packet with the same layout as NewTileCopy.
func NewTileXor(color0, color1 uint8, row, col int, rows TileBlock) Packet {
	return newTilePacket(TileXor, color0, color1, row, col, rows)
}

func newTilePacket(instr Instruction, color0, color1 uint8, row, col int, rows TileBlock) Packet {
	p := New()
	p.SetInstruction(instr)
	p.SetDataByte(0, color0&0x0F)
	p.SetDataByte(1, color1&0x0F)
	p.SetDataByte(2, uint8(clamp(row, 0, 17))&0x1F)
	p.SetDataByte(3, uint8(clamp(col, 0, 49))&0x3F)
	for i, r := range rows {
		p.SetDataByte(4+i, r&0x3F)
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Row returns the TILE_COPY/XOR target row (data byte 2, low 5 bits).
func (p Packet) Row() int { return int(p.DataByte(2) & 0x1F) }

// Column returns the TILE_COPY/XOR target column (data byte 3, low 6 bits).
func (p Packet) Column() int { return int(p.DataByte(3) & 0x3F) }

// Color0 returns the low 4 bits of data byte 0: the first color of a
// TILE_COPY/XOR payload, or the color of a TRANSPARENT_COLOR payload.
func (p Packet) Color0() uint8 { return p.DataByte(0) & 0x0F }

// Color1 returns the second color of a TILE_COPY/XOR payload.
func (p Packet) Color1() uint8 { return p.DataByte(1) & 0x0F }

// Rows returns the 12 row bitmasks of a TILE_COPY/XOR payload.
func (p Packet) Rows() TileBlock {
	var rows TileBlock
	for i := range rows {
		rows[i] = p.DataByte(4+i) & 0x3F
	}
	return rows
}

// RGB6 holds a 6-bit-per-channel RGB triple (each field 0..63), the unit the
// LOAD_PALETTE wire payload is packed from. BMP palette input (§6) already
// produces colors in this range via round(c*63/255).
type RGB6 struct{ R, G, B uint8 }

// EncodePaletteEntries packs up to 8 consecutive RGB6 colors into the
// 16-byte LOAD_PALETTE payload using the spec §4.1 formula:
// byte A = ((R&3)<<4)|(G>>2), byte B = ((G&3)<<4)|(B&0xF).
// Only the low 2 bits of R and the low 4 bits of B are carried; G keeps all
// 6 bits.
func EncodePaletteEntries(instr Instruction, colors []RGB6) Packet {
	p := New()
	p.SetInstruction(instr)
	for i := 0; i < 8 && i < len(colors); i++ {
		c := colors[i]
		byteA := ((c.R & 0x3) << 4) | (c.G >> 2)
		byteB := ((c.G & 0x3) << 4) | (c.B & 0xF)
		p.SetDataByte(2*i, byteA)
		p.SetDataByte(2*i+1, byteB)
	}
	return p
}

// DecodePaletteEntries unpacks up to 8 RGB6 triples from a LOAD_PALETTE
// payload. It inverts EncodePaletteEntries for the bits that encoding
// carries: a color round-trips exactly only when R <= 3 and B <= 15.
func (p Packet) DecodePaletteEntries() [8]RGB6 {
	var out [8]RGB6
	for i := 0; i < 8; i++ {
		a := p.DataByte(2 * i)
		b := p.DataByte(2*i + 1)
		out[i] = RGB6{
			R: (a >> 4) & 0x3,
			G: ((a & 0xF) << 2) | ((b >> 4) & 0x3),
			B: b & 0xF,
		}
	}
	return out
}
