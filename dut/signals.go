package dut

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownSignal is returned when a signal name is not part of the design.
var ErrUnknownSignal = errors.New("unknown signal")

// ErrNotInput is returned when a poke targets a signal the design drives.
var ErrNotInput = errors.New("signal is not an input")

// Direction tells who drives a signal.
type Direction int

const (
	// Input signals are driven by the host through pokes.
	Input Direction = iota
	// Output signals are driven by the design logic.
	Output
	// Register signals hold design state between cycles.
	Register
)

// Name returns the name of the direction.
func (d Direction) Name() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Register:
		return "register"
	default:
		panic("invalid direction")
	}
}

// ParseDirection converts a direction name into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input", "in":
		return Input, nil
	case "output", "out":
		return Output, nil
	case "register", "reg":
		return Register, nil
	default:
		return 0, errors.Errorf("invalid direction %q", s)
	}
}

// SignalSpec describes one named signal of the design.
type SignalSpec struct {
	Name  string
	Width int
	Dir   Direction
}

// MaxWidth is the widest signal the model accepts.
const MaxWidth = 4096

func (s SignalSpec) validate() error {
	if s.Name == "" {
		return errors.New("signal name must not be empty")
	}

	if s.Width < 1 || s.Width > MaxWidth {
		return errors.Errorf("signal %s: width %d out of range [1, %d]",
			s.Name, s.Width, MaxWidth)
	}

	return nil
}

// Signals is a table of named values, each masked to its declared width.
type Signals struct {
	specs  map[string]SignalSpec
	order  []string
	masks  map[string]*big.Int
	values map[string]*big.Int
}

func newSignals(specs []SignalSpec) (*Signals, error) {
	s := &Signals{
		specs:  make(map[string]SignalSpec, len(specs)),
		masks:  make(map[string]*big.Int, len(specs)),
		values: make(map[string]*big.Int, len(specs)),
	}

	for _, spec := range specs {
		if err := spec.validate(); err != nil {
			return nil, err
		}

		if _, dup := s.specs[spec.Name]; dup {
			return nil, errors.Errorf("duplicated signal %s", spec.Name)
		}

		mask := new(big.Int).Lsh(big.NewInt(1), uint(spec.Width))
		mask.Sub(mask, big.NewInt(1))

		s.specs[spec.Name] = spec
		s.order = append(s.order, spec.Name)
		s.masks[spec.Name] = mask
		s.values[spec.Name] = new(big.Int)
	}

	return s, nil
}

// Spec returns the declaration of the named signal.
func (s *Signals) Spec(name string) (SignalSpec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// Names returns the signal names in declaration order.
func (s *Signals) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Signals) mustGet(name string) *big.Int {
	v, ok := s.values[name]
	if !ok {
		panic(fmt.Sprintf("design logic accessed unknown signal %s", name))
	}

	return v
}

// Uint returns the low 64 bits of the named signal.
func (s *Signals) Uint(name string) uint64 {
	v := s.mustGet(name)
	if v.IsUint64() {
		return v.Uint64()
	}

	return new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
}

// Bool reports whether the named signal is non-zero.
func (s *Signals) Bool(name string) bool {
	return s.mustGet(name).Sign() != 0
}

// Big returns a copy of the named signal.
func (s *Signals) Big(name string) *big.Int {
	return new(big.Int).Set(s.mustGet(name))
}

// SetUint writes the named signal, truncating to its width.
func (s *Signals) SetUint(name string, v uint64) {
	s.SetBig(name, new(big.Int).SetUint64(v))
}

// SetBool writes 1 or 0 to the named signal.
func (s *Signals) SetBool(name string, v bool) {
	if v {
		s.SetUint(name, 1)
		return
	}

	s.SetUint(name, 0)
}

// SetBig writes the named signal, truncating to its width. Negative values
// are stored in two's complement.
func (s *Signals) SetBig(name string, v *big.Int) {
	cur := s.mustGet(name)
	cur.And(v, s.masks[name])
}

func (s *Signals) lookup(name string) (*big.Int, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownSignal, name)
	}

	return v, nil
}

func (s *Signals) clone() *Signals {
	c := &Signals{
		specs:  s.specs,
		order:  s.order,
		masks:  s.masks,
		values: make(map[string]*big.Int, len(s.values)),
	}

	for name, v := range s.values {
		c.values[name] = new(big.Int).Set(v)
	}

	return c
}

// commit copies every design-driven signal of next into s. Inputs keep the
// host-provided value.
func (s *Signals) commit(next *Signals) {
	for name, v := range next.values {
		if s.specs[name].Dir == Input {
			continue
		}

		s.values[name].Set(v)
	}
}
