package ssd1306

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BeatGlow/ssd1306/pixel"
)

var errTest = errors.New("transport failure")

// testConn records every command and data transfer, and can be armed to fail
// the n-th write.
type testConn struct {
	commands [][]byte
	data     [][]byte
	failAt   int // 1-based write index to fail at, 0 disables
	writes   int
}

func (c *testConn) String() string { return "testConn" }
func (c *testConn) Close() error   { return nil }

func (c *testConn) Command(command byte, args ...byte) error {
	c.writes++
	if c.failAt > 0 && c.writes == c.failAt {
		return errTest
	}
	c.commands = append(c.commands, append([]byte{command}, args...))
	return nil
}

func (c *testConn) Data(data ...byte) error {
	c.writes++
	if c.failAt > 0 && c.writes == c.failAt {
		return errTest
	}
	c.data = append(c.data, append([]byte(nil), data...))
	return nil
}

// reset drops the recorded init traffic so a test only sees what it triggers.
func (c *testConn) reset() {
	c.commands = c.commands[:0]
	c.data = c.data[:0]
	c.failAt = 0
	c.writes = 0
}

func testDisplay(t *testing.T, config *Config) (*Display, *testConn) {
	t.Helper()
	c := new(testConn)
	d, err := New(c, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	c.reset()
	return d, c
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		width, height int
		pages         int
	}{
		{128, 64, 8},
		{128, 32, 4},
		{96, 16, 2},
		{64, 48, 6},
		{64, 32, 4},
	}
	for _, test := range tests {
		d, _ := testDisplay(t, &Config{Width: test.width, Height: test.height})
		if d.pages != test.pages {
			t.Errorf("%dx%d: expected %d pages, got %d", test.width, test.height, test.pages, d.pages)
		}
		if want := test.width * test.pages; len(d.Pix) != want {
			t.Errorf("%dx%d: expected %d buffer bytes, got %d", test.width, test.height, want, len(d.Pix))
		}
		if size := d.Bounds().Size(); size.X != test.width || size.Y != test.height {
			t.Errorf("%dx%d: unexpected bounds %s", test.width, test.height, d.Bounds())
		}
	}
}

func TestInvalidGeometry(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"height not multiple of 8", &Config{Width: 128, Height: 60}},
		{"height 7", &Config{Width: 128, Height: 7}},
		{"height negative", &Config{Width: 128, Height: -8}},
		{"height too large", &Config{Width: 128, Height: 72}},
		{"width negative", &Config{Width: -1, Height: 64}},
		{"width too large", &Config{Width: 132, Height: 64}},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			c := new(testConn)
			if _, err := New(c, test.config); !errors.Is(err, ErrGeometry) {
				it.Errorf("expected ErrGeometry, got %v", err)
			}
			if c.writes != 0 {
				it.Errorf("expected no transport writes, got %d", c.writes)
			}
		})
	}
}

func TestInitSequence(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		commands [][]byte
	}{
		{
			name:   "128x64",
			config: &Config{Width: 128, Height: 64},
			commands: [][]byte{
				{0xAE},       // display off
				{0x20, 0x00}, // horizontal addressing
				{0x40},       // display start line 0
				{0xA1},       // segment remap
				{0xA8, 0x3F}, // multiplex ratio
				{0xC8},       // COM scan remapped
				{0xD3, 0x00}, // display offset 0
				{0xDA, 0x12}, // COM pin configuration
				{0xD5, 0x80}, // clock divide
				{0xD9, 0xF1}, // precharge
				{0xDB, 0x30}, // VCOM deselect
				{0x81, 0xFF}, // contrast
				{0xA4},       // follow RAM
				{0xA6},       // normal display
				{0x8D, 0x14}, // charge pump on
				{0xAF},       // display on
			},
		},
		{
			name:   "128x32 uses alternate COM pin configuration",
			config: &Config{Width: 128, Height: 32},
			commands: [][]byte{
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
			},
		},
		{
			name:   "external VCC changes precharge and charge pump",
			config: &Config{Width: 128, Height: 64, ExternalVCC: true},
			commands: [][]byte{
				{0xAE},
				{0x20, 0x00},
				{0x40},
				{0xA1},
				{0xA8, 0x3F},
				{0xC8},
				{0xD3, 0x00},
				{0xDA, 0x12},
				{0xD5, 0x80},
				{0xD9, 0x22},
				{0xDB, 0x30},
				{0x81, 0xFF},
				{0xA4},
				{0xA6},
				{0x8D, 0x10},
				{0xAF},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			c := new(testConn)
			if _, err := New(c, test.config); err != nil {
				it.Fatalf("New failed: %v", err)
			}

			// The init traffic is the 16 configuration commands followed
			// by the addressing window of the initial blank Refresh.
			if len(c.commands) != len(test.commands)+2 {
				it.Fatalf("expected %d command writes, got %d", len(test.commands)+2, len(c.commands))
			}
			for i, want := range test.commands {
				if !bytes.Equal(c.commands[i], want) {
					it.Errorf("command %d: expected % #x, got % #x", i, want, c.commands[i])
				}
			}

			if len(c.data) != 1 {
				it.Fatalf("expected 1 data write, got %d", len(c.data))
			}
			want := test.config.Width * test.config.Height / 8
			if len(c.data[0]) != want {
				it.Errorf("expected %d data bytes, got %d", want, len(c.data[0]))
			}
			for i, v := range c.data[0] {
				if v != 0x00 {
					it.Errorf("expected blank buffer, got %#02x at offset %d", v, i)
					break
				}
			}
		})
	}
}

func TestInitFailure(t *testing.T) {
	// 16 configuration commands, 2 addressing commands and 1 data write.
	const writes = 19

	for at := 1; at <= writes; at++ {
		c := &testConn{failAt: at}
		if _, err := New(c, &Config{Width: 128, Height: 64}); !errors.Is(err, errTest) {
			t.Fatalf("write %d: expected transport error, got %v", at, err)
		}
		if got := len(c.commands) + len(c.data); got != at-1 {
			t.Errorf("write %d: expected %d writes before failure, got %d", at, at-1, got)
		}
	}
}

func TestRefreshWindow(t *testing.T) {
	tests := []struct {
		name       string
		config     *Config
		columnAddr []byte
		pageAddr   []byte
	}{
		{
			name:       "128x64 full window",
			config:     &Config{Width: 128, Height: 64},
			columnAddr: []byte{0x21, 0, 127},
			pageAddr:   []byte{0x22, 0, 7},
		},
		{
			name:       "64 wide panels are shifted by 32 columns",
			config:     &Config{Width: 64, Height: 48},
			columnAddr: []byte{0x21, 32, 95},
			pageAddr:   []byte{0x22, 0, 5},
		},
		{
			name:       "128x32 page window",
			config:     &Config{Width: 128, Height: 32},
			columnAddr: []byte{0x21, 0, 127},
			pageAddr:   []byte{0x22, 0, 3},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			d, c := testDisplay(it, test.config)
			if err := d.Refresh(); err != nil {
				it.Fatalf("Refresh failed: %v", err)
			}
			if len(c.commands) != 2 {
				it.Fatalf("expected 2 command writes, got %d", len(c.commands))
			}
			if !bytes.Equal(c.commands[0], test.columnAddr) {
				it.Errorf("expected column address % #x, got % #x", test.columnAddr, c.commands[0])
			}
			if !bytes.Equal(c.commands[1], test.pageAddr) {
				it.Errorf("expected page address % #x, got % #x", test.pageAddr, c.commands[1])
			}
		})
	}
}

func TestRefreshData(t *testing.T) {
	d, c := testDisplay(t, &Config{Width: 128, Height: 64})

	d.Fill(pixel.On)
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	d.Fill(pixel.Off)
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(c.data) != 2 {
		t.Fatalf("expected 2 data writes, got %d", len(c.data))
	}
	for i, v := range c.data[0] {
		if v != 0xFF {
			t.Errorf("expected 0xFF, got %#02x at offset %d", v, i)
			break
		}
	}
	for i, v := range c.data[1] {
		if v != 0x00 {
			t.Errorf("expected 0x00, got %#02x at offset %d", v, i)
			break
		}
	}
}

func TestShow(t *testing.T) {
	d, c := testDisplay(t, nil)

	if err := d.Show(false); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if err := d.Show(true); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	want := [][]byte{{0xAE}, {0xAF}}
	for i, v := range want {
		if !bytes.Equal(c.commands[i], v) {
			t.Errorf("expected command % #x, got % #x", v, c.commands[i])
		}
	}
}

func TestSetContrast(t *testing.T) {
	d, c := testDisplay(t, nil)

	for _, level := range []uint8{0x00, 0x7F, 0xFF} {
		if err := d.SetContrast(level); err != nil {
			t.Fatalf("SetContrast failed: %v", err)
		}
		if want := []byte{0x81, level}; !bytes.Equal(c.commands[len(c.commands)-1], want) {
			t.Errorf("expected command % #x, got % #x", want, c.commands[len(c.commands)-1])
		}
	}
}

func TestSetInvert(t *testing.T) {
	d, c := testDisplay(t, nil)

	if err := d.SetInvert(true); err != nil {
		t.Fatalf("SetInvert failed: %v", err)
	}
	if err := d.SetInvert(false); err != nil {
		t.Fatalf("SetInvert failed: %v", err)
	}

	want := [][]byte{{0xA7}, {0xA6}}
	for i, v := range want {
		if !bytes.Equal(c.commands[i], v) {
			t.Errorf("expected command % #x, got % #x", v, c.commands[i])
		}
	}
}

func TestTransportFailure(t *testing.T) {
	d, c := testDisplay(t, nil)

	c.failAt = 1
	if err := d.SetContrast(0x80); !errors.Is(err, errTest) {
		t.Errorf("expected transport error, got %v", err)
	}
	c.reset()

	// A failed data write during Refresh surfaces too.
	c.failAt = 3
	if err := d.Refresh(); !errors.Is(err, errTest) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestSetPixel(t *testing.T) {
	d, _ := testDisplay(t, &Config{Width: 128, Height: 64})

	index := d.PixOffset(70, 42)
	prev := d.Pix[index]

	if err := d.SetPixel(70, 42, true); err != nil {
		t.Fatalf("SetPixel failed: %v", err)
	}
	if on, err := d.Pixel(70, 42); err != nil || !on {
		t.Errorf("expected pixel (70,42) lit, got %v, %v", on, err)
	}
	if err := d.SetPixel(70, 42, false); err != nil {
		t.Fatalf("SetPixel failed: %v", err)
	}
	if v := d.Pix[index]; v != prev {
		t.Errorf("expected Pix[%d] = %#02x after on/off round trip, got %#02x", index, prev, v)
	}

	for _, p := range []struct{ x, y int }{{-1, 0}, {0, -1}, {128, 0}, {0, 64}} {
		if err := d.SetPixel(p.x, p.y, true); !errors.Is(err, ErrBounds) {
			t.Errorf("SetPixel(%d, %d): expected ErrBounds, got %v", p.x, p.y, err)
		}
		if _, err := d.Pixel(p.x, p.y); !errors.Is(err, ErrBounds) {
			t.Errorf("Pixel(%d, %d): expected ErrBounds, got %v", p.x, p.y, err)
		}
	}
}

func TestString(t *testing.T) {
	d, _ := testDisplay(t, &Config{Width: 128, Height: 32})
	if want := "SSD1306 OLED 128x32"; d.String() != want {
		t.Errorf("expected %q, got %q", want, d.String())
	}
}
