package qdtech

import (
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Transport clocks bytes out to the controller, most significant bit first.
//
// A Transport may also implement WordWriter, PatternWriter and io.Writer;
// the driver uses them when present and falls back to WriteByte otherwise.
type Transport interface {
	WriteByte(b byte) error
}

// WordWriter is implemented by transports that send a 16-bit word in one
// operation, most significant byte first.
type WordWriter interface {
	WriteWord(w uint16) error
}

// PatternWriter is implemented by transports with a fast path for sending the
// same 16-bit word n times. It must be indistinguishable on the wire from n
// calls to WriteWord.
type PatternWriter interface {
	WritePattern(w uint16, n int) error
}

// defaultMaxTxSize is used when the connection does not report conn.Limits.
const defaultMaxTxSize = 4096

// spiTransport sends bytes over a hardware SPI connection.
type spiTransport struct {
	c         spi.Conn
	maxTxSize int
	buf       []byte
}

// NewSPITransport returns a Transport writing to an already connected SPI
// port. Bulk writes are split to honor conn.Limits when c implements it.
func NewSPITransport(c spi.Conn) Transport {
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize <= 0 {
		maxTxSize = defaultMaxTxSize
	}
	// Keep chunks word aligned so patterns never split a pixel.
	maxTxSize &^= 1
	if maxTxSize == 0 {
		maxTxSize = 2
	}
	return &spiTransport{c: c, maxTxSize: maxTxSize, buf: make([]byte, 2)}
}

func (s *spiTransport) WriteByte(b byte) error {
	s.buf[0] = b
	return s.c.Tx(s.buf[:1], nil)
}

func (s *spiTransport) WriteWord(w uint16) error {
	s.buf[0] = byte(w >> 8)
	s.buf[1] = byte(w)
	return s.c.Tx(s.buf[:2], nil)
}

func (s *spiTransport) WritePattern(w uint16, n int) error {
	if n <= 0 {
		return nil
	}
	size := 2 * n
	if size > s.maxTxSize {
		size = s.maxTxSize
	}
	chunk := make([]byte, size)
	for i := 0; i < size; i += 2 {
		chunk[i] = byte(w >> 8)
		chunk[i+1] = byte(w)
	}
	for remaining := 2 * n; remaining > 0; remaining -= len(chunk) {
		if remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		if err := s.c.Tx(chunk, nil); err != nil {
			return err
		}
	}
	return nil
}

// Write sends p in chunks of at most the connection's maximum transfer size.
func (s *spiTransport) Write(p []byte) (int, error) {
	n := 0
	for len(p) != 0 {
		chunk := p
		if len(chunk) > s.maxTxSize {
			chunk = chunk[:s.maxTxSize]
		}
		if err := s.c.Tx(chunk, nil); err != nil {
			return n, err
		}
		n += len(chunk)
		p = p[len(chunk):]
	}
	return n, nil
}

func (s *spiTransport) String() string {
	return s.c.String()
}

// bitBangTransport toggles a clock and a data line by hand.
type bitBangTransport struct {
	clk  gpio.PinOut
	mosi gpio.PinOut
}

// NewBitBangTransport returns a Transport that shifts bits out on mosi,
// pulsing clk high then low for each bit (SPI mode 0). Both lines are driven
// low, their idle level, before returning.
func NewBitBangTransport(clk, mosi gpio.PinOut) (Transport, error) {
	if err := clk.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := mosi.Out(gpio.Low); err != nil {
		return nil, err
	}
	return &bitBangTransport{clk: clk, mosi: mosi}, nil
}

func (t *bitBangTransport) WriteByte(b byte) error {
	for bit := byte(0x80); bit != 0; bit >>= 1 {
		if err := t.mosi.Out(gpio.Level(b&bit != 0)); err != nil {
			return err
		}
		if err := t.clk.Out(gpio.High); err != nil {
			return err
		}
		if err := t.clk.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (t *bitBangTransport) String() string {
	return "bitbang{" + t.clk.String() + ", " + t.mosi.String() + "}"
}

// writeWord sends w most significant byte first using the best capability t
// offers.
func writeWord(t Transport, w uint16) error {
	if ww, ok := t.(WordWriter); ok {
		return ww.WriteWord(w)
	}
	if err := t.WriteByte(byte(w >> 8)); err != nil {
		return err
	}
	return t.WriteByte(byte(w))
}

// writePattern sends w n times.
func writePattern(t Transport, w uint16, n int) error {
	if pw, ok := t.(PatternWriter); ok {
		return pw.WritePattern(w, n)
	}
	for ; n > 0; n-- {
		if err := writeWord(t, w); err != nil {
			return err
		}
	}
	return nil
}

// writeBytes sends p as a raw byte stream.
func writeBytes(t Transport, p []byte) error {
	if w, ok := t.(io.Writer); ok {
		_, err := w.Write(p)
		return err
	}
	for _, b := range p {
		if err := t.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Transport     = (*spiTransport)(nil)
	_ WordWriter    = (*spiTransport)(nil)
	_ PatternWriter = (*spiTransport)(nil)
	_ io.Writer     = (*spiTransport)(nil)
	_ Transport     = (*bitBangTransport)(nil)
)
