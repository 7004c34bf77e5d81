package ssd1306

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/BeatGlow/ssd1306/conn"
)

// Conn errors.
var (
	ErrDCPin = errors.New("ssd1306: data/command (DC) GPIO pin is invalid")
)

// Conn is the transport for communicating with the display controller.
//
// Command delivers a command byte and its operand bytes tagged as control
// data; Data delivers bytes tagged as display data. How the tagging happens
// is bus specific. Both block until the transfer completed and return
// transport failures unchanged.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Command sends a command byte with optional operand bytes.
	Command(byte, ...byte) error

	// Data sends display data bytes.
	Data(...byte) error
}

// I2CConfig describes the I²C bus configuration.
type I2CConfig struct {
	// Device is the I²C device, use -1 to use the first available device.
	Device int

	// Addr is the I²C address.
	Addr uint8

	// Reset pin, optional. When set it is pulsed low before the bus is
	// opened.
	Reset gpio.PinOut
}

// DefaultI2CConfig are the default configuration values.
var DefaultI2CConfig = I2CConfig{
	Device: -1,
	Addr:   0x3c,
}

type i2cConn struct {
	*conn.I2C
}

// OpenI2C opens an I²C connection to the display controller.
func OpenI2C(config *I2CConfig) (Conn, error) {
	if config == nil {
		config = new(I2CConfig)
		*config = DefaultI2CConfig
	}
	if config.Addr == 0 {
		config.Addr = DefaultI2CConfig.Addr
	}

	if err := pulseReset(config.Reset); err != nil {
		return nil, err
	}

	c, err := conn.OpenI2C(config.Device, config.Addr)
	if err != nil {
		return nil, err
	}

	return &i2cConn{I2C: c}, nil
}

func (c *i2cConn) Command(cmnd byte, args ...byte) (err error) {
	_, err = c.I2C.Write(append([]byte{i2cCommand, cmnd}, args...))
	return
}

func (c *i2cConn) Data(data ...byte) (err error) {
	_, err = c.I2C.Write(append([]byte{i2cData}, data...))
	return
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	Bus     int
	Device  int
	Mode    uint8
	SpeedHz uint32
	Reset   gpio.PinOut
	DC      gpio.PinOut
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Bus:     0,
	Device:  0,
	SpeedHz: 8_000_000,
	Reset:   gpioreg.ByName("GPIO25"),
	DC:      gpioreg.ByName("GPIO24"),
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []uint32{
	500_000,
	1_000_000,
	2_000_000,
	4_000_000,
	8_000_000,
	10_000_000,
	16_000_000,
	20_000_000,
}

type spiConn struct {
	bus     *conn.SPI
	dc      gpio.PinOut
	dcLevel gpio.Level
}

// OpenSPI opens a 4-wire SPI connection to the display controller. The DC
// pin selects between command and display data transfers.
func OpenSPI(config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}

	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultSPIConfig.SpeedHz
	}

	if err := pulseReset(config.Reset); err != nil {
		return nil, err
	}

	c, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}

	var valid bool
	for _, speed := range ValidSPISpeeds {
		if valid = speed == config.SpeedHz; valid {
			break
		}
	}
	if !valid {
		_ = c.Close()
		return nil, fmt.Errorf("ssd1306: invalid SPI speed %dHz", config.SpeedHz)
	}
	if err = c.SetMaxSpeed(int(config.SpeedHz)); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err = c.SetMode(conn.SPIMode(config.Mode)); err != nil {
		_ = c.Close()
		return nil, err
	}

	return &spiConn{
		bus: c,
		dc:  config.DC,
		// Force the first transfer to assert the DC pin.
		dcLevel: gpio.High,
	}, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
	}
	return nil
}

// Command keeps DC low for the operand bytes as well; on the SSD1306 command
// operands are part of the control stream, not display data.
func (c *spiConn) Command(cmnd byte, args ...byte) (err error) {
	if err = c.updateDC(gpio.Low); err != nil {
		return
	}
	_, err = c.bus.Write(append([]byte{cmnd}, args...))
	return
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.High); err != nil {
		return
	}
	_, err = c.bus.Write(data)
	return
}

// pulseReset cycles an optional active-low reset pin before the controller
// is configured.
func pulseReset(pin gpio.PinOut) error {
	if pin == nil || pin == gpio.INVALID {
		return nil
	}
	if err := pin.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := pin.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}
