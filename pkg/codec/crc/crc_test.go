package crc

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
)

func TestCRC8RoundTripNoError(t *testing.T) {
	c, err := New8("CRC8-ATM", 72, true)
	if err != nil {
		t.Fatalf("New8() error = %v", err)
	}
	data := block.NewBlock(c.BitK())
	data.SetSymbol(8, 0, 0x5A)

	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	if got := c.Decode(encoded, decoded, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
}

func TestCRC8SingleBitFlipCorrects(t *testing.T) {
	c, err := New8("CRC8-ATM", 72, true)
	if err != nil {
		t.Fatalf("New8() error = %v", err)
	}
	data := block.NewBlock(c.BitK())

	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)
	encoded.InvBit(3)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	if got := c.Decode(encoded, decoded, nil); got != codec.CE {
		t.Fatalf("got %v, want CE", got)
	}
}

func TestCRC16RoundTripNoError(t *testing.T) {
	c, err := New16("CRC16", 80, true)
	if err != nil {
		t.Fatalf("New16() error = %v", err)
	}
	data := block.NewBlock(c.BitK())
	data.SetSymbol(16, 0, 0xBEEF)

	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	if got := c.Decode(encoded, decoded, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
}
