package qdtech

import (
	"image/color"

	"tinygo.org/x/drivers"

	"periph.io/x/devices/v3/qdtech/image565"
)

// tinyGoTransport sends bytes over a TinyGo drivers.SPI bus.
type tinyGoTransport struct {
	bus drivers.SPI
	buf [2]byte
}

// NewTinyGoTransport returns a Transport for a bus implementing the TinyGo
// drivers.SPI interface, such as machine.SPI0.
func NewTinyGoTransport(bus drivers.SPI) Transport {
	return &tinyGoTransport{bus: bus}
}

func (t *tinyGoTransport) WriteByte(b byte) error {
	_, err := t.bus.Transfer(b)
	return err
}

func (t *tinyGoTransport) WriteWord(w uint16) error {
	t.buf[0] = byte(w >> 8)
	t.buf[1] = byte(w)
	return t.bus.Tx(t.buf[:], nil)
}

func (t *tinyGoTransport) Write(p []byte) (int, error) {
	if err := t.bus.Tx(p, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Size implements drivers.Displayer. It returns the current logical size.
func (d *Dev) Size() (x, y int16) {
	return int16(d.width), int16(d.height)
}

// SetPixel implements drivers.Displayer.
//
// The pixel is written immediately; there is no frame buffer. The first error
// encountered is kept and reported by Display.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	err := d.DrawPixel(int(x), int(y), image565.Pack(c.R, c.G, c.B))
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Display implements drivers.Displayer. Pixels are already on the panel, so it
// only reports and clears the first error kept by SetPixel.
func (d *Dev) Display() error {
	err := d.err
	d.err = nil
	return err
}

var _ drivers.Displayer = (*Dev)(nil)
