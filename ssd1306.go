package ssd1306

import (
	"errors"
	"fmt"

	"github.com/BeatGlow/ssd1306/pixel"
)

// Driver errors.
var (
	ErrGeometry = errors.New("ssd1306: invalid geometry")
	ErrBounds   = errors.New("ssd1306: pixel out of display bounds")
)

const (
	defaultWidth  = 128
	defaultHeight = 64
)

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels, 1 to 128.
	Width int

	// Height of the display in pixels, a multiple of 8 up to 64.
	Height int

	// ExternalVCC must be set if the panel is powered by an external high
	// voltage supply instead of the internal charge pump. It changes the
	// precharge and charge pump timing.
	ExternalVCC bool
}

// Display is a driver for the SSD1306 OLED display controller.
//
// The embedded image is the display framebuffer; drawing on it only mutates
// memory until Refresh pushes the buffer to the controller. The framebuffer
// is not safe for concurrent mutation without external synchronization.
type Display struct {
	*pixel.MonoVerticalLSBImage

	c      Conn
	width  int
	height int
	pages  int
	extVCC bool
	halted bool
}

// New initializes a SSD1306 display on the provided transport.
//
// The controller is configured with a fixed command sequence and the panel
// starts blank. Construction either fully succeeds or the display must not
// be used; a transport failure during initialization is returned unchanged.
// The connection is borrowed, Close releases it.
func New(c Conn, config *Config) (*Display, error) {
	if config == nil {
		config = new(Config)
	}
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}

	if config.Width < 1 || config.Width > 128 {
		return nil, fmt.Errorf("%w: width %d not in 1..128", ErrGeometry, config.Width)
	}
	if config.Height < 8 || config.Height > 64 || config.Height%8 != 0 {
		return nil, fmt.Errorf("%w: height %d not a multiple of 8 in 8..64", ErrGeometry, config.Height)
	}

	d := &Display{
		MonoVerticalLSBImage: pixel.NewMonoVerticalLSBImage(config.Width, config.Height),

		c:      c,
		width:  config.Width,
		height: config.Height,
		pages:  config.Height / 8,
		extVCC: config.ExternalVCC,
	}

	if err := d.init(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Display) init() (err error) {
	// Panel variant quirks: 32 row panels use the alternative COM pin
	// wiring, and external VCC needs different precharge and charge pump
	// timing than the internal supply.
	comPins := byte(0x12)
	if d.height == 32 {
		comPins = 0x02
	}
	precharge, chargePump := byte(0xF1), byte(0x14)
	if d.extVCC {
		precharge, chargePump = 0x22, 0x10
	}

	if err = d.commands(
		[]byte{setDisplayOff},
		[]byte{setMemoryMode, 0x00}, // horizontal addressing
		[]byte{setStartLine | 0x00},
		[]byte{setSegmentRemap}, // column 127 mapped to SEG0
		[]byte{setMultiplexRatio, byte(d.height - 1)},
		[]byte{setComScanDec}, // scan from COM[N-1] to COM0
		[]byte{setDisplayOffset, 0x00},
		[]byte{setComPins, comPins},
		[]byte{setDisplayClockDiv, 0x80},
		[]byte{setPrecharge, precharge},
		[]byte{setVComDetect, 0x30}, // 0.83 × VCC
		[]byte{setContrast, 0xFF},
		[]byte{setDisplayAllOnResume}, // output follows RAM contents
		[]byte{setNormalDisplay},
		[]byte{setChargePump, chargePump},
		[]byte{setDisplayOn},
	); err != nil {
		return
	}

	// Start from a known blank panel.
	d.Clear()
	return d.Refresh()
}

func (d *Display) command(command byte, args ...byte) error {
	if err := d.c.Command(command, args...); err != nil {
		return fmt.Errorf("ssd1306: command %#02x: %w", command, err)
	}
	return nil
}

func (d *Display) commands(commands ...[]byte) (err error) {
	for _, command := range commands {
		if err = d.command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

func (d *Display) data(data ...byte) error {
	if err := d.c.Data(data...); err != nil {
		return fmt.Errorf("ssd1306: data write: %w", err)
	}
	return nil
}

// Refresh pushes the whole framebuffer to the controller.
//
// There is no dirty region tracking; every call re-asserts the full
// addressing window and retransmits all pages.
func (d *Display) Refresh() (err error) {
	x0, x1 := byte(0), byte(d.width-1)
	if d.width == 64 {
		// 64 pixel wide panels are wired to columns 32..95 of the 128
		// column GDDRAM.
		x0 += 32
		x1 += 32
	}
	if err = d.command(setColumnAddr, x0, x1); err != nil {
		return
	}
	if err = d.command(setPageAddr, 0x00, byte(d.pages-1)); err != nil {
		return
	}
	return d.data(d.Pix...)
}

// Show toggles the display panel on or off. The framebuffer and the
// controller RAM are left untouched.
func (d *Display) Show(show bool) error {
	if show {
		return d.command(setDisplayOn)
	}
	return d.command(setDisplayOff)
}

// SetContrast adjusts the contrast level. The full byte range is valid.
func (d *Display) SetContrast(level uint8) error {
	return d.command(setContrast, level)
}

// SetInvert swaps lit and dark pixels on the panel without touching the
// framebuffer.
func (d *Display) SetInvert(invert bool) error {
	command := byte(setNormalDisplay)
	if invert {
		command |= 0x01
	}
	return d.command(command)
}

// SetPixel sets the pixel at (x, y). Unlike the embedded image's Set it
// reports coordinates outside the display bounds with ErrBounds.
func (d *Display) SetPixel(x, y int, on bool) error {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return ErrBounds
	}
	if on {
		d.Set(x, y, pixel.On)
	} else {
		d.Set(x, y, pixel.Off)
	}
	return nil
}

// Pixel reports whether the pixel at (x, y) is lit.
func (d *Display) Pixel(x, y int) (bool, error) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return false, ErrBounds
	}
	return d.At(x, y).(pixel.Mono).On, nil
}

// Close turns the panel off and closes the connection.
func (d *Display) Close() error {
	if !d.halted {
		if err := d.Show(false); err != nil {
			_ = d.c.Close()
			return err
		}
		d.halted = true
	}
	return d.c.Close()
}

func (d *Display) String() string {
	return fmt.Sprintf("SSD1306 OLED %dx%d", d.width, d.height)
}
