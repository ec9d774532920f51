// Package config describes a simulation target in YAML and assembles the
// engine, design, bridges and harness for it.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/sarchlab/simharness/dut"
	"github.com/sarchlab/simharness/harness"
	"gopkg.in/yaml.v3"
)

// DefaultFreqMHz is the clock of a target that does not set one.
const DefaultFreqMHz = 1000

// SignalConfig declares one signal of the target.
type SignalConfig struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
	Dir   string `yaml:"dir"`
}

// TargetConfig describes a simulation target and how its test is run.
type TargetConfig struct {
	Target      string         `yaml:"target"`
	FreqMHz     float64        `yaml:"freq_mhz"`
	Seed        uint64         `yaml:"seed"`
	Log         *bool          `yaml:"log"`
	Trace       bool           `yaml:"trace"`
	ResetSignal string         `yaml:"reset_signal"`
	Signals     []SignalConfig `yaml:"signals"`
}

// Parse decodes and validates a target description. Unknown fields are
// rejected.
func Parse(data []byte) (*TargetConfig, error) {
	cfg := &TargetConfig{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode target config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads a target description from a file.
func LoadFile(path string) (*TargetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return cfg, nil
}

func (c *TargetConfig) applyDefaults() {
	if c.FreqMHz == 0 {
		c.FreqMHz = DefaultFreqMHz
	}

	if c.ResetSignal == "" {
		c.ResetSignal = harness.DefaultResetSignal
	}

	if c.Log == nil {
		log := true
		c.Log = &log
	}
}

// Validate checks the description for errors.
func (c *TargetConfig) Validate() error {
	if c.Target == "" {
		return errors.New("target name must not be empty")
	}

	if c.FreqMHz < 0 {
		return errors.Errorf("negative frequency %v MHz", c.FreqMHz)
	}

	if len(c.Signals) == 0 {
		return errors.Errorf("target %s declares no signals", c.Target)
	}

	specs, err := c.SignalSpecs()
	if err != nil {
		return err
	}

	seen := make(map[string]dut.SignalSpec, len(specs))
	for _, s := range specs {
		if _, dup := seen[s.Name]; dup {
			return errors.Errorf("duplicated signal %s", s.Name)
		}

		seen[s.Name] = s
	}

	if reset, ok := seen[c.ResetSignal]; ok && reset.Dir != dut.Input {
		return errors.Errorf("reset signal %s must be an input", c.ResetSignal)
	}

	return nil
}

// SignalSpecs converts the signal declarations for the design model.
func (c *TargetConfig) SignalSpecs() ([]dut.SignalSpec, error) {
	specs := make([]dut.SignalSpec, 0, len(c.Signals))

	for _, s := range c.Signals {
		dir, err := dut.ParseDirection(s.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "signal %s", s.Name)
		}

		if s.Width < 1 || s.Width > dut.MaxWidth {
			return nil, errors.Errorf("signal %s: width %d out of range [1, %d]",
				s.Name, s.Width, dut.MaxWidth)
		}

		if s.Name == "" {
			return nil, errors.New("signal name must not be empty")
		}

		specs = append(specs, dut.SignalSpec{
			Name:  s.Name,
			Width: s.Width,
			Dir:   dir,
		})
	}

	return specs, nil
}
