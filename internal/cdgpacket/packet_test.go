package cdgpacket

import "testing"

func TestNewDefaults(t *testing.T) {
	p := New()
	if p.Command() != commandTVGraphics {
		t.Fatalf("command = 0x%02X, want 0x09", p.Command())
	}
	if p.Instruction() != 0 {
		t.Fatalf("instruction = %v, want 0", p.Instruction())
	}
	for i := 0; i < payloadLen; i++ {
		if p.DataByte(i) != 0 {
			t.Fatalf("data byte %d = %d, want 0", i, p.DataByte(i))
		}
	}
}

func TestSetCommandClamps(t *testing.T) {
	p := New()
	p.SetCommand(0x09) // equivalent of 0x109 truncated by caller already
	if p.Command() != 0x09 {
		t.Fatalf("command = 0x%02X, want 0x09", p.Command())
	}
	p.SetCommand(0xFF)
	if p.Command() != 0x09 {
		t.Fatalf("SetCommand(0xFF) did not clamp to 0x09, got 0x%02X", p.Command())
	}
}

func TestDataByteOutOfRange(t *testing.T) {
	p := New()
	if got := p.DataByte(-1); got != 0 {
		t.Fatalf("DataByte(-1) = %d, want 0", got)
	}
	if got := p.DataByte(16); got != 0 {
		t.Fatalf("DataByte(16) = %d, want 0", got)
	}
	p.SetDataByte(16, 5) // ignored
	if got := p.DataByte(15); got != 0 {
		t.Fatalf("out-of-range write leaked into byte 15: %d", got)
	}
}

func TestRoundTrip(t *testing.T) {
	p := New()
	p.SetInstruction(TileCopy)
	p.SetDataByte(0, 5)
	p.SetDataByte(1, 9)
	for i := 2; i < payloadLen; i++ {
		p.SetDataByte(i, uint8(i))
	}
	buf := p.Serialize()
	if len(buf) != Size {
		t.Fatalf("serialize length = %d, want %d", len(buf), Size)
	}
	got, err := Deserialize(buf[:])
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDeserializeTooShort(t *testing.T) {
	if _, err := Deserialize(make([]byte, 23)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestReservedBytesAlwaysZero(t *testing.T) {
	p := New()
	p.SetInstruction(TileXor)
	for i := 0; i < payloadLen; i++ {
		p.SetDataByte(i, 0xFF)
	}
	buf := p.Serialize()
	if buf[2] != 0 || buf[3] != 0 {
		t.Fatalf("parity Q not zero: %02X %02X", buf[2], buf[3])
	}
	if buf[20] != 0 || buf[21] != 0 || buf[22] != 0 || buf[23] != 0 {
		t.Fatalf("parity P not zero: %v", buf[20:24])
	}
}

func TestIdlePacket(t *testing.T) {
	p := NewIdle()
	if p.Instruction() != MemoryPreset {
		t.Fatalf("idle instruction = %v, want MemoryPreset", p.Instruction())
	}
	if p.DataByte(1) != 0x0F {
		t.Fatalf("idle repeat byte = %d, want 15", p.DataByte(1))
	}
}

func TestTilePacketClampsCoordinates(t *testing.T) {
	var rows TileBlock
	p := NewTileCopy(1, 2, 99, 99, rows)
	if p.Row() != 17 {
		t.Fatalf("row = %d, want clamp to 17", p.Row())
	}
	if p.Column() != 49 {
		t.Fatalf("column = %d, want clamp to 49", p.Column())
	}
}

func TestPaletteEntryRoundTrip(t *testing.T) {
	colors := []RGB6{
		{R: 3, G: 3, B: 15},
		{R: 1, G: 2, B: 4},
	}
	p := EncodePaletteEntries(LoadPaletteLo, colors)
	got := p.DecodePaletteEntries()
	for i, c := range colors {
		if got[i] != c {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], c)
		}
	}
}

func TestRecognizedInstructions(t *testing.T) {
	for _, i := range []Instruction{MemoryPreset, BorderPreset, TileCopy, TileXor, LoadPaletteLo, LoadPaletteHi, ScrollPreset, TransparentColor, LoadLow, LoadHigh} {
		p := New()
		p.SetInstruction(i)
		if !p.IsRecognized() {
			t.Fatalf("instruction %v should be recognized", i)
		}
	}
	p := New()
	p.instruction = 0x3D // unused opcode, bypassing setter's mask for the test
	if p.IsRecognized() {
		t.Fatal("0x3D should not be recognized")
	}
}
