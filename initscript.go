package qdtech

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Encoding of the length byte of a step in a binary init script.
const (
	delayFlag = 0x80 // a delay byte follows the arguments
	argsMask  = 0x7F

	// longDelay is the 8-bit delay value standing for 500ms.
	longDelay = 255
)

// Step is a single controller command replayed during initialization.
type Step struct {
	Cmd   byte
	Args  []byte
	Delay time.Duration // Wait after the arguments; 0 for none
}

// Script is an ordered list of commands sent to the controller once at
// power on.
type Script []Step

// ParseScript decodes a binary init script table.
//
// Byte 0 is the number of steps. Each step is the command byte, a length byte
// whose low 7 bits are the argument count and whose high bit flags a trailing
// delay byte, the arguments and then the delay byte, in milliseconds, if
// flagged. A delay byte of 255 means 500ms.
func ParseScript(b []byte) (Script, error) {
	if len(b) == 0 {
		return nil, errors.New("qdtech: empty init script")
	}
	n := int(b[0])
	b = b[1:]
	s := make(Script, 0, n)
	for i := 0; i < n; i++ {
		if len(b) < 2 {
			return nil, fmt.Errorf("qdtech: init script truncated in step %d", i)
		}
		cmd, l := b[0], b[1]
		b = b[2:]
		nArgs := int(l & argsMask)
		need := nArgs
		if l&delayFlag != 0 {
			need++
		}
		if len(b) < need {
			return nil, fmt.Errorf("qdtech: init script truncated in step %d (command 0x%02X)", i, cmd)
		}
		st := Step{Cmd: cmd}
		if nArgs != 0 {
			st.Args = append([]byte(nil), b[:nArgs]...)
		}
		if l&delayFlag != 0 {
			st.Delay = decodeDelay(b[nArgs])
		}
		b = b[need:]
		s = append(s, st)
	}
	return s, nil
}

// MustParseScript is like ParseScript but panics on a malformed table. It is
// meant for package level tables.
func MustParseScript(b []byte) Script {
	s, err := ParseScript(b)
	if err != nil {
		panic(err)
	}
	return s
}

// MarshalBinary encodes s in the table format read by ParseScript.
//
// A step without delay is encoded without the delay flag, so a table whose
// steps carry a flagged delay byte of 0 decodes and re-encodes to different,
// equivalent bytes.
func (s Script) MarshalBinary() ([]byte, error) {
	if len(s) > 255 {
		return nil, fmt.Errorf("qdtech: %d steps do not fit an init script", len(s))
	}
	out := []byte{byte(len(s))}
	for i, st := range s {
		if len(st.Args) > argsMask {
			return nil, fmt.Errorf("qdtech: step %d has %d arguments, max %d", i, len(st.Args), argsMask)
		}
		l := byte(len(st.Args))
		var delay byte
		if st.Delay != 0 {
			var err error
			if delay, err = encodeDelay(st.Delay); err != nil {
				return nil, fmt.Errorf("qdtech: step %d: %w", i, err)
			}
			l |= delayFlag
		}
		out = append(out, st.Cmd, l)
		out = append(out, st.Args...)
		if l&delayFlag != 0 {
			out = append(out, delay)
		}
	}
	return out, nil
}

func decodeDelay(b byte) time.Duration {
	if b == longDelay {
		return 500 * time.Millisecond
	}
	return time.Duration(b) * time.Millisecond
}

func encodeDelay(d time.Duration) (byte, error) {
	if d == 500*time.Millisecond {
		return longDelay, nil
	}
	if d%time.Millisecond != 0 || d < 0 || d >= longDelay*time.Millisecond {
		return 0, fmt.Errorf("delay %s cannot be encoded", d)
	}
	return byte(d / time.Millisecond), nil
}

// runScript replays s through the command channel.
func (d *Dev) runScript(s Script) error {
	for _, st := range s {
		d.log.WithFields(logrus.Fields{
			"cmd":   fmt.Sprintf("0x%02X", st.Cmd),
			"args":  len(st.Args),
			"delay": st.Delay,
		}).Debug("qdtech: init step")
		if err := d.ch.command(st.Cmd); err != nil {
			return err
		}
		for _, a := range st.Args {
			if err := d.ch.data(a); err != nil {
				return err
			}
		}
		if st.Delay != 0 {
			d.sleep(st.Delay)
		}
	}
	return nil
}

// QDTechInit is the power-on command table for QDTech 128x160 panels.
var QDTechInit = []byte{
	29,
	0xF0, 2, 0x5A, 0x5A, // Excommand2
	0xFC, 2, 0x5A, 0x5A, // Excommand3
	0x26, 1, 0x01, // Gamma set
	0xFA, 15, 0x02, 0x1F, 0x00, 0x10, 0x22, 0x30, 0x38, 0x3A, 0x3A, 0x3A, 0x3A, 0x3A, 0x3D, 0x02, 0x01, // Positive gamma control
	0xFB, 15, 0x21, 0x00, 0x02, 0x04, 0x07, 0x0A, 0x0B, 0x0C, 0x0C, 0x16, 0x1E, 0x30, 0x3F, 0x01, 0x02, // Negative gamma control
	0xFD, 11, 0x00, 0x00, 0x00, 0x17, 0x10, 0x00, 0x01, 0x01, 0x00, 0x1F, 0x1F, // Analog parameter control
	0xF4, 15, 0x00, 0x00, 0x00, 0x00, 0x00, 0x3F, 0x3F, 0x07, 0x00, 0x3C, 0x36, 0x00, 0x3C, 0x36, 0x00, // Power control
	0xF5, 13, 0x00, 0x70, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x6D, 0x66, 0x06, // VCOM control
	0xF6, 11, 0x02, 0x00, 0x3F, 0x00, 0x00, 0x00, 0x02, 0x00, 0x06, 0x01, 0x00, // Source control
	0xF2, 17, 0x00, 0x01, 0x03, 0x08, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x04, 0x08, 0x08, // Display control
	0xF8, 1, 0x11, // Gate control
	0xF7, 4, 0xC8, 0x20, 0x00, 0x00, // Interface control
	0xF3, 2, 0x00, 0x00, // Power sequence control
	cmdSLPOUT, delayFlag, 50, // Wake
	0xF3, 2 | delayFlag, 0x00, 0x01, 50, // Power sequence control
	0xF3, 2 | delayFlag, 0x00, 0x03, 50,
	0xF3, 2 | delayFlag, 0x00, 0x07, 50,
	0xF3, 2 | delayFlag, 0x00, 0x0F, 50,
	0xF4, 15 | delayFlag, 0x00, 0x04, 0x00, 0x00, 0x00, 0x3F, 0x3F, 0x07, 0x00, 0x3C, 0x36, 0x00, 0x3C, 0x36, 0x00, 50, // Power control
	0xF3, 2 | delayFlag, 0x00, 0x1F, 50, // Power sequence control
	0xF3, 2 | delayFlag, 0x00, 0x7F, 50,
	0xF3, 2 | delayFlag, 0x00, 0xFF, 50,
	0xFD, 11, 0x00, 0x00, 0x00, 0x17, 0x10, 0x00, 0x00, 0x01, 0x00, 0x16, 0x16, // Analog parameter control
	0xF4, 15, 0x00, 0x09, 0x00, 0x00, 0x00, 0x3F, 0x3F, 0x07, 0x00, 0x3C, 0x36, 0x00, 0x3C, 0x36, 0x00, // Power control
	cmdMADCTL, 1, madctlBGR, // Memory access control
	cmdTEON, 1, 0x00, // Tearing effect line on
	cmdCOLMOD, 1 | delayFlag, 0x05, 150, // 16 bits per pixel
	cmdDISPON, 0, // Display on
	cmdRAMWR, 0, // Memory write
}
