// Command oled-demo draws a test pattern on a SSD1306 OLED display and then
// blinks it by toggling display inversion.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/ssd1306"
	"github.com/BeatGlow/ssd1306/draw"
	"github.com/BeatGlow/ssd1306/pixel"
)

func main() {
	widthFlag := flag.Int("width", 128, "Display width")
	heightFlag := flag.Int("height", 64, "Display height")
	externalVCCFlag := flag.Bool("external-vcc", false, "Panel is powered by an external high voltage supply")
	i2cDeviceFlag := flag.Int("i2c-dev", ssd1306.DefaultI2CConfig.Device, "I²C device number (default: use first available)")
	i2cAddrFlag := flag.Uint("i2c-addr", uint(ssd1306.DefaultI2CConfig.Addr), "I²C device address")
	spiBusFlag := flag.Int("spi-bus", 0, "SPI bus")
	spiDeviceFlag := flag.Int("spi-dev", 0, "SPI device")
	resetPinFlag := flag.String("reset", "", "Reset GPIO pin (optional)")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC, SPI only)")
	blinkFlag := flag.Duration("blink", 500*time.Millisecond, "Invert blink interval")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <i2c|spi>\n", os.Args[0])
		os.Exit(1)
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	var (
		conn ssd1306.Conn
		err  error
	)
	switch busType := flag.Arg(0); busType {
	case "i2c":
		conn, err = ssd1306.OpenI2C(&ssd1306.I2CConfig{
			Device: *i2cDeviceFlag,
			Addr:   uint8(*i2cAddrFlag),
			Reset:  gpioreg.ByName(*resetPinFlag),
		})
	case "spi":
		conn, err = ssd1306.OpenSPI(&ssd1306.SPIConfig{
			Bus:    *spiBusFlag,
			Device: *spiDeviceFlag,
			Reset:  gpioreg.ByName(*resetPinFlag),
			DC:     gpioreg.ByName(*dcPinFlag),
		})
	default:
		err = fmt.Errorf("unsupported bus type %q", busType)
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("using connection: %s\n", conn)

	oled, err := ssd1306.New(conn, &ssd1306.Config{
		Width:       *widthFlag,
		Height:      *heightFlag,
		ExternalVCC: *externalVCCFlag,
	})
	if err != nil {
		_ = conn.Close()
		fatal(err)
	}
	defer oled.Close()
	fmt.Printf("using driver: %s\n", oled)

	r := oled.Bounds()
	draw.Rectangle(oled, r, pixel.On)
	if err = draw.Text(oled, image.Pt(6, r.Dy()/2+4), 13, "Hello, OLED!", pixel.On); err != nil {
		fatal(err)
	}
	if err = oled.Refresh(); err != nil {
		fatal(err)
	}

	fmt.Println("hit control-c to stop...")
	var (
		invert bool
		ticker = time.NewTicker(*blinkFlag)
	)
	defer ticker.Stop()
	for range ticker.C {
		invert = !invert
		if err = oled.SetInvert(invert); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
