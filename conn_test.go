package ssd1306

import (
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/BeatGlow/ssd1306/conn"
)

// The I²C transport frames command writes with a 0x00 control byte and data
// writes with 0x40.
func TestI2CConnFraming(t *testing.T) {
	const addr = 0x3d
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: addr, W: []byte{0x00, 0x81, 0x7F}},
			{Addr: addr, W: []byte{0x40, 0x01, 0x02, 0x03}},
		},
		DontPanic: true,
	}
	c := &i2cConn{I2C: conn.NewI2C(pb, addr)}

	if err := c.Command(setContrast, 0x7F); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if err := c.Data(0x01, 0x02, 0x03); err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if err := pb.Close(); err != nil {
		t.Errorf("not all bus operations were consumed: %v", err)
	}
}

// Full construction over a playback bus, verifying the bytes that actually
// hit the wire.
func TestNewOverI2C(t *testing.T) {
	const addr = 0x3c
	commands := [][]byte{
		{0xAE},
		{0x20, 0x00},
		{0x40},
		{0xA1},
		{0xA8, 0x1F},
		{0xC8},
		{0xD3, 0x00},
		{0xDA, 0x02},
		{0xD5, 0x80},
		{0xD9, 0xF1},
		{0xDB, 0x30},
		{0x81, 0xFF},
		{0xA4},
		{0xA6},
		{0x8D, 0x14},
		{0xAF},
		{0x21, 0x00, 0x7F},
		{0x22, 0x00, 0x03},
	}
	ops := make([]i2ctest.IO, 0, len(commands)+1)
	for _, command := range commands {
		ops = append(ops, i2ctest.IO{Addr: addr, W: append([]byte{0x00}, command...)})
	}
	ops = append(ops, i2ctest.IO{Addr: addr, W: append([]byte{0x40}, make([]byte, 128*32/8)...)})

	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	c := &i2cConn{I2C: conn.NewI2C(pb, addr)}

	if _, err := New(c, &Config{Width: 128, Height: 32}); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := pb.Close(); err != nil {
		t.Errorf("not all bus operations were consumed: %v", err)
	}
}
