package qdtech

import (
	"periph.io/x/conn/v3/gpio"
)

// channel brackets every transmission with the register-select (dc) and
// chip-select (cs) lines. cs is active low and left high between calls so
// the bus can be shared; it is nil when the SPI controller drives it.
type channel struct {
	t  Transport
	dc gpio.PinOut
	cs gpio.PinOut
}

// command sends a single command byte.
func (c *channel) command(cmd byte) error {
	return c.bracket(gpio.Low, func() error {
		return c.t.WriteByte(cmd)
	})
}

// data sends a single data byte.
func (c *channel) data(b byte) error {
	return c.bracket(gpio.High, func() error {
		return c.t.WriteByte(b)
	})
}

// data16 sends a 16-bit data word.
func (c *channel) data16(w uint16) error {
	return c.bracket(gpio.High, func() error {
		return writeWord(c.t, w)
	})
}

// fill sends the data word w n times in a single selection.
func (c *channel) fill(w uint16, n int) error {
	return c.bracket(gpio.High, func() error {
		return writePattern(c.t, w, n)
	})
}

// stream sends raw data bytes in a single selection.
func (c *channel) stream(p []byte) error {
	return c.bracket(gpio.High, func() error {
		return writeBytes(c.t, p)
	})
}

// bracket sets dc, selects the chip, runs tx and deselects the chip. The chip
// is deselected even if tx fails.
func (c *channel) bracket(dc gpio.Level, tx func() error) error {
	if err := c.dc.Out(dc); err != nil {
		return err
	}
	if err := c.selectChip(true); err != nil {
		return err
	}
	err := tx()
	if err2 := c.selectChip(false); err == nil {
		err = err2
	}
	return err
}

func (c *channel) selectChip(selected bool) error {
	if c.cs == nil {
		return nil
	}
	// Active low.
	return c.cs.Out(gpio.Level(!selected))
}
