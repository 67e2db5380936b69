// Package qdtech controls QDTech 128x160 RGB565 TFT panels, and other
// controllers of the ST7735 family, via SPI or bit-banged GPIO lines.
//
// See the examples for how to use this package.
package qdtech

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"periph.io/x/devices/v3/qdtech/image565"
)

// Controller commands.
const (
	cmdSLPOUT = 0x11
	cmdINVOFF = 0x20
	cmdINVON  = 0x21
	cmdDISPOF = 0x28
	cmdDISPON = 0x29
	cmdCASET  = 0x2A
	cmdRASET  = 0x2B
	cmdRAMWR  = 0x2C
	cmdTEON   = 0x35
	cmdMADCTL = 0x36
	cmdCOLMOD = 0x3A
)

// Memory access control (MADCTL) bits.
const (
	madctlMY  = 0x80 // Row address order
	madctlMX  = 0x40 // Column address order
	madctlMV  = 0x20 // Row/column exchange
	madctlML  = 0x10 // Vertical refresh order
	madctlRGB = 0x00
	madctlBGR = 0x08
	madctlMH  = 0x04 // Horizontal refresh order
)

// Native panel dimensions.
const (
	Width     = 128
	Height    = 160
	Height144 = 128 // Height of the 1.44" green tab panels

	// Largest W or H accepted, so that sizes fit drivers.Displayer's int16.
	maxDim = 0x7FFF
)

// TabColor identifies the panel variant by the color of the tab on its
// protective film. It selects the color filter order and the panel height.
type TabColor uint8

const (
	TabGreen    TabColor = iota // BGR filter
	TabRed                      // BGR filter
	TabBlack                    // RGB filter
	TabGreen144                 // BGR filter, 128 rows
)

func (t TabColor) String() string {
	switch t {
	case TabGreen:
		return "green"
	case TabRed:
		return "red"
	case TabBlack:
		return "black"
	case TabGreen144:
		return "green144"
	default:
		return fmt.Sprintf("TabColor(%d)", uint8(t))
	}
}

// Rotation is a clockwise rotation of the display in 90° steps.
type Rotation uint8

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Opts is the configuration for the display.
type Opts struct {
	// Natural orientation dimensions in pixels (default: 128x160)
	W int
	H int

	Tab      TabColor // Panel variant
	Rotation Rotation // Applied after initialization

	// Added to every column and row address sent to the controller
	ColOffset int
	RowOffset int

	// Optional control lines
	CS  gpio.PinOut // Chip select, active low (nil if driven by the SPI controller)
	RST gpio.PinOut // Reset (nil for soft reset only bring-up)

	// SPI clock for NewSPI (default: 4MHz)
	Hz physic.Frequency

	// Script overrides the power-on command table (default: QDTechInit)
	Script Script

	// Log receives debug output (default: logrus.StandardLogger())
	Log logrus.FieldLogger
}

// Dev is the device handle for the display.
type Dev struct {
	ch  channel
	rst gpio.PinOut
	log logrus.FieldLogger

	sleep func(time.Duration)

	// Panel geometry
	baseW, baseH int
	tab          TabColor
	colStart     int
	rowStart     int

	// Orientation
	rotation      Rotation
	width, height int

	// First error hidden by SetPixel
	err error
}

// New creates a new device writing through t.
//
// The dc (Data/Command) GPIO pin must be provided. opts can be nil to use
// defaults (128x160 green tab panel).
func New(t Transport, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	d, err := newDev(t, dc, opts)
	if err != nil {
		return nil, err
	}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI creates a new device connected via SPI.
//
// The SPI port is configured for opts.Hz (4MHz by default), Mode0, 8-bit
// transfers, most significant bit first.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	hz := 4 * physic.MegaHertz
	if opts != nil && opts.Hz != 0 {
		hz = opts.Hz
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return New(NewSPITransport(c), dc, opts)
}

// NewBitBang creates a new device driven by toggling the clk and mosi GPIO
// pins directly.
func NewBitBang(clk, mosi, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := NewBitBangTransport(clk, mosi)
	if err != nil {
		return nil, err
	}
	return New(t, dc, opts)
}

// newDev validates opts and builds an uninitialized device.
func newDev(t Transport, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if t == nil {
		return nil, errors.New("qdtech: transport is required")
	}
	if dc == nil {
		return nil, errors.New("qdtech: dc pin is required")
	}
	w, h := opts.W, opts.H
	if w == 0 {
		w = Width
	}
	if h == 0 {
		h = Height
	}
	if w < 0 || h < 0 || w > maxDim || h > maxDim {
		return nil, errors.New("qdtech: width and height must be between 1 and 32767")
	}
	if opts.ColOffset < 0 || opts.RowOffset < 0 {
		return nil, errors.New("qdtech: offsets must not be negative")
	}
	if opts.Tab > TabGreen144 {
		return nil, fmt.Errorf("qdtech: unknown tab color %d", opts.Tab)
	}
	lg := opts.Log
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	d := &Dev{
		ch:       channel{t: t, dc: dc, cs: opts.CS},
		rst:      opts.RST,
		log:      lg,
		sleep:    time.Sleep,
		baseW:    w,
		baseH:    h,
		tab:      opts.Tab,
		colStart: opts.ColOffset,
		rowStart: opts.RowOffset,
	}
	d.width, d.height = d.dims(Rotation0)
	return d, nil
}

// init resets the controller and sends the initialization script.
func (d *Dev) init(opts *Opts) error {
	if err := d.ch.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("qdtech: failed to drive DC: %w", err)
	}
	// Listening from here on; the first command bracket deselects.
	if err := d.ch.selectChip(true); err != nil {
		return fmt.Errorf("qdtech: failed to select chip: %w", err)
	}
	if err := d.reset(); err != nil {
		return d.abort(err)
	}

	s := opts.Script
	if s == nil {
		var err error
		if s, err = ParseScript(QDTechInit); err != nil {
			return d.abort(err)
		}
	}
	if err := d.runScript(s); err != nil {
		return d.abort(err)
	}

	d.log.WithFields(logrus.Fields{
		"tab":    d.tab,
		"width":  d.width,
		"height": d.height,
	}).Debug("qdtech: initialized")

	if opts.Rotation != Rotation0 {
		return d.SetRotation(opts.Rotation)
	}
	return nil
}

// abort deselects the chip after a failed bring-up and returns err.
func (d *Dev) abort(err error) error {
	if err2 := d.ch.selectChip(false); err2 != nil {
		d.log.WithError(err2).Debug("qdtech: failed to deselect chip")
	}
	return err
}

// reset pulses RST high, low and high again. Without an RST pin the
// controller is left to the soft reset of the init script.
func (d *Dev) reset() error {
	if d.rst == nil {
		d.log.Debug("qdtech: no reset pin, skipping hardware reset")
		return nil
	}
	d.log.Debug("qdtech: hardware reset")
	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.rst.Out(l); err != nil {
			return fmt.Errorf("qdtech: failed to pull RST %s: %w", l, err)
		}
		d.sleep(500 * time.Millisecond)
	}
	return nil
}

// dims returns the logical width and height for rotation r.
func (d *Dev) dims(r Rotation) (w, h int) {
	w, h = d.baseW, d.baseH
	if d.tab == TabGreen144 {
		h = Height144
	}
	if r&1 != 0 {
		w, h = h, w
	}
	return w, h
}

// madctl returns the memory access control byte for rotation r.
func (d *Dev) madctl(r Rotation) byte {
	var b byte
	switch r & 3 {
	case Rotation0:
		b = madctlMX | madctlMY
	case Rotation90:
		b = madctlMY | madctlMV
	case Rotation180:
		b = 0
	case Rotation270:
		b = madctlMX | madctlMV
	}
	if d.tab == TabBlack {
		return b | madctlRGB
	}
	return b | madctlBGR
}

// SetRotation sets the clockwise rotation of the display. Values above 3
// wrap around.
func (d *Dev) SetRotation(r Rotation) error {
	r &= 3
	if err := d.ch.command(cmdMADCTL); err != nil {
		return err
	}
	if err := d.ch.data(d.madctl(r)); err != nil {
		return err
	}
	d.rotation = r
	d.width, d.height = d.dims(r)
	return nil
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() Rotation {
	return d.rotation
}

// Width returns the logical width for the current rotation.
func (d *Dev) Width() int {
	return d.width
}

// Height returns the logical height for the current rotation.
func (d *Dev) Height() int {
	return d.height
}

// setAddrWindow selects the inclusive RAM region (x0,y0)-(x1,y1) and starts a
// RAM write. Coordinates are sent as is.
func (d *Dev) setAddrWindow(x0, y0, x1, y1 int) error {
	if err := d.ch.command(cmdCASET); err != nil {
		return err
	}
	if err := d.ch.data16(uint16(x0 + d.colStart)); err != nil {
		return err
	}
	if err := d.ch.data16(uint16(x1 + d.colStart)); err != nil {
		return err
	}
	if err := d.ch.command(cmdRASET); err != nil {
		return err
	}
	if err := d.ch.data16(uint16(y0 + d.rowStart)); err != nil {
		return err
	}
	if err := d.ch.data16(uint16(y1 + d.rowStart)); err != nil {
		return err
	}
	return d.ch.command(cmdRAMWR)
}

// DrawPixel sets the pixel at (x, y). Pixels outside the display are ignored.
func (d *Dev) DrawPixel(x, y int, c image565.Color) error {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return nil
	}
	if err := d.setAddrWindow(x, y, x+1, y+1); err != nil {
		return err
	}
	return d.ch.data16(uint16(c))
}

// DrawVLine draws a vertical line of h pixels starting at (x, y), clipped to
// the display.
func (d *Dev) DrawVLine(x, y, h int, c image565.Color) error {
	return d.FillRect(x, y, 1, h, c)
}

// DrawHLine draws a horizontal line of w pixels starting at (x, y), clipped
// to the display.
func (d *Dev) DrawHLine(x, y, w int, c image565.Color) error {
	return d.FillRect(x, y, w, 1, c)
}

// FillRect fills the w×h rectangle at (x, y), clipped to the display.
// Nothing is sent when no part of the rectangle is on screen.
func (d *Dev) FillRect(x, y, w, h int, c image565.Color) error {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x >= d.width || y >= d.height || w <= 0 || h <= 0 {
		return nil
	}
	if x+w > d.width {
		w = d.width - x
	}
	if y+h > d.height {
		h = d.height - y
	}
	if err := d.setAddrWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	return d.ch.fill(uint16(c), w*h)
}

// FillScreen fills the whole display.
func (d *Dev) FillScreen(c image565.Color) error {
	return d.FillRect(0, 0, d.width, d.height, c)
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if invert {
		return d.ch.command(cmdINVON)
	}
	return d.ch.command(cmdINVOFF)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements display.Drawer. It follows the current rotation.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Draw implements display.Drawer.
//
// Only the dst region, clipped to the display, is sent.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	r := dst.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	// Keep sp aligned with the clipped corner.
	sp = sp.Add(r.Min.Sub(dst.Min))
	dst = r

	// Fast path: source is already RGB565 and covers the region.
	var pix []byte
	if img, ok := src.(*image565.Image); ok && img.Stride == 2*dst.Dx() && image.Rect(sp.X, sp.Y, sp.X+dst.Dx(), sp.Y+dst.Dy()) == img.Rect {
		pix = img.Pix
	} else {
		buf := image565.NewImage(image.Rect(0, 0, dst.Dx(), dst.Dy()))
		draw.Draw(buf, buf.Rect, src, sp, draw.Src)
		pix = buf.Pix
	}

	if err := d.setAddrWindow(dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1); err != nil {
		return err
	}
	return d.ch.stream(pix)
}

// Write writes a full frame of big-endian RGB565 pixels, as found in
// image565.Image.Pix, for the current rotation.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != 2*d.width*d.height {
		return 0, errors.New("qdtech: invalid buffer size")
	}
	if err := d.setAddrWindow(0, 0, d.width-1, d.height-1); err != nil {
		return 0, err
	}
	if err := d.ch.stream(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Halt turns the display off. RAM content is kept; drawing still works and
// the panel can be turned back on by reinitializing it.
func (d *Dev) Halt() error {
	return d.ch.command(cmdDISPOF)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("qdtech.Dev{%dx%d}", d.width, d.height)
}

var _ display.Drawer = (*Dev)(nil)
