// Package ssd1306 controls a monochrome OLED display via a Solomon Systech
// SSD1306 display controller.
//
// The controller is driven over I²C or 4-wire SPI through the Conn transport
// interface; open one with [OpenI2C] or [OpenSPI], or provide your own
// implementation.
//
// The driver owns a 1-bit framebuffer ([pixel.MonoVerticalLSBImage]) which it
// exposes through the standard [image/draw.Image] interface. Drawing only
// mutates memory; call Refresh to push the buffer to the display.
package ssd1306
