// Package qdtech controls QDTech 128x160 TFT displays via SPI.
//
// The QDTech panels use an ST7735-family controller taking 16-bit RGB565
// pixels. This driver implements the display.Drawer interface from periph.io
// and the drivers.Displayer interface from TinyGo.
//
// # Display Characteristics
//
// - 128×160 pixels, RGB565 (65536 colors)
// - Four rotations in 90° steps
// - Green, red and black tab variants, plus the 128×128 1.44" green tab panel
// - Display inversion
//
// # Hardware Connection
//
// Connect the display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V (or 5V depending on the board)
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	RS/DC       → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RST         → Optional: GPIO for hardware reset
//
// Without a hardware SPI port, any two GPIO pins can be used with NewBitBang.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/qdtech"
//		"periph.io/x/devices/v3/qdtech/image565"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO24")
//
//		dev, _ := qdtech.NewSPI(spiBus, dcPin, &qdtech.Opts{
//			RST: gpioreg.ByName("GPIO25"),
//		})
//		defer dev.Halt()
//
//		dev.FillScreen(image565.Pack(0, 0, 0))
//		dev.FillRect(10, 10, 50, 30, image565.Pack(255, 0, 0))
//		dev.DrawHLine(0, 80, dev.Width(), image565.Pack(255, 255, 255))
//	}
//
// # Initialization
//
// On creation the driver pulses RST (high, low, high, 500ms each) when it is
// provided, then replays the power-on command table. The table uses the
// compact encoding read by ParseScript; Opts.Script replaces it for other
// panel variants.
//
// # Drawing
//
// FillRect, DrawHLine, DrawVLine and DrawPixel clip to the current rotation's
// bounds; only the part on screen is sent. Draw accepts any
// image.Image and converts it to RGB565; image565.Image is sent without
// conversion.
package qdtech
