package block

import "testing"

func TestBlockSymbolRoundTrip(t *testing.T) {
	b := NewBlock(64)
	b.SetSymbol(8, 3, 0xA5)
	if got := b.GetSymbol(8, 3); got != 0xA5 {
		t.Fatalf("got %x, want %x", got, 0xA5)
	}
}

func TestBlockInvSymbolTogglesBits(t *testing.T) {
	b := NewBlock(32)
	b.SetSymbol(8, 0, 0xFF)
	b.InvSymbol(8, 0, 0x0F)
	if got := b.GetSymbol(8, 0); got != 0xF0 {
		t.Fatalf("got %x, want %x", got, 0xF0)
	}
}

func TestBlockXor(t *testing.T) {
	a := NewBlock(16)
	b := NewBlock(16)
	a.SetSymbol(16, 0, 0xFF00)
	b.SetSymbol(16, 0, 0x0FF0)
	a.Xor(b)
	if got := a.GetSymbol(16, 0); got != 0xF0F0 {
		t.Fatalf("got %x, want %x", got, 0xF0F0)
	}
}

func TestBlockIsZero(t *testing.T) {
	b := NewBlock(16)
	if !b.IsZero(0) {
		t.Fatal("fresh block should be zero")
	}
	b.SetBit(15, true)
	if b.IsZero(0) {
		t.Fatal("block with a set bit should not be zero")
	}
	if !b.IsZero(1) {
		t.Fatal("ignoring the one redundant (set) bit, block should read as zero")
	}
}

func TestExtractLinear(t *testing.T) {
	data := NewBlock(16)
	data.SetSymbol(8, 1, 0xAB) // second 8-bit group
	w := NewECCWord(8, 8)
	w.Extract(data, Linear, 1, 8, MSGConfig{})
	if got := w.GetSymbol(8, 0); got != 0xAB {
		t.Fatalf("got %x, want %x", got, 0xAB)
	}
}

func TestExtractOnChipX4(t *testing.T) {
	channelWidth := 8
	data := NewBlock(channelWidth * 18)
	for i := 0; i < 18; i++ {
		data.SetBit(channelWidth*i+4, true) // bit 0 of the second chip (pos=1)
	}
	w := NewECCWord(18*4, 18*4)
	w.Extract(data, OnChipX4, 1, channelWidth, MSGConfig{})
	for i := 0; i < 18; i++ {
		if !w.GetBit(i * 4) {
			t.Fatalf("beat %d: expected extracted bit set", i)
		}
	}
}
