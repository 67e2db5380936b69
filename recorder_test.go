package qdtech

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// wire is one transport write as seen by the controller.
type wire struct {
	cmd  bool // dc was low
	word bool // sent as a 16-bit word
	v    uint16
}

// command groups a command byte with the data that followed it.
type command struct {
	cmd   byte
	args  []byte
	words []uint16
}

// recorder is a Transport that logs writes together with the control line
// levels at the time of the write.
type recorder struct {
	dc, cs   *logPin
	ops      []wire
	levels   []string // pin changes, in order
	sleeps   []time.Duration
	deselect int // writes made while cs was high
}

func (r *recorder) WriteByte(b byte) error {
	r.check()
	r.ops = append(r.ops, wire{cmd: r.dc.L == gpio.Low, v: uint16(b)})
	return nil
}

func (r *recorder) WriteWord(w uint16) error {
	r.check()
	r.ops = append(r.ops, wire{cmd: r.dc.L == gpio.Low, word: true, v: w})
	return nil
}

func (r *recorder) check() {
	if r.cs != nil && r.cs.L == gpio.High {
		r.deselect++
	}
}

func (r *recorder) sleep(d time.Duration) {
	r.sleeps = append(r.sleeps, d)
}

func (r *recorder) clear() {
	r.ops = nil
	r.levels = nil
	r.sleeps = nil
	r.deselect = 0
}

// commands groups the recorded writes by command.
func (r *recorder) commands() []command {
	var out []command
	for _, o := range r.ops {
		switch {
		case o.cmd:
			out = append(out, command{cmd: byte(o.v)})
		case len(out) == 0:
			// Data without a command; keep it visible to the test.
			out = append(out, command{cmd: 0xFF})
			fallthrough
		default:
			c := &out[len(out)-1]
			if o.word {
				c.words = append(c.words, o.v)
			} else {
				c.args = append(c.args, byte(o.v))
			}
		}
	}
	return out
}

// logPin is a gpiotest.Pin reporting its level changes to a recorder.
type logPin struct {
	*gpiotest.Pin
	r *recorder
}

func (p *logPin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.r.levels = append(p.r.levels, p.Pin.N+"="+l.String())
	return nil
}

func newLogPin(r *recorder, name string) *logPin {
	return &logPin{Pin: &gpiotest.Pin{N: name, L: gpio.High}, r: r}
}

func newRecorder() *recorder {
	r := &recorder{}
	r.dc = newLogPin(r, "DC")
	r.cs = newLogPin(r, "CS")
	return r
}

// newTestDev creates an initialized device writing to a recorder. The
// recorder is cleared after initialization.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *recorder) {
	t.Helper()
	r := newRecorder()
	if opts == nil {
		opts = &Opts{}
	}
	o := *opts
	o.CS = r.cs
	d, err := newDev(r, r.dc, &o)
	if err != nil {
		t.Fatalf("newDev() error = %v", err)
	}
	d.sleep = r.sleep
	if err := d.init(&o); err != nil {
		t.Fatalf("init() error = %v", err)
	}
	r.clear()
	return d, r
}
