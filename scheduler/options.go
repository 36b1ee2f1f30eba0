package scheduler

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Options struct {
	// specify length for event channel, if zero default will be used
	EventChannelLength uint16 `yaml:"eventChannelLength"`

	// logging prefix
	LogPrefix string `yaml:"logPrefix"`

	// enable verbose logging
	LogDebug bool `yaml:"logDebug"`

	// simulated runtime charged per tick; when positive a ticker drives
	// ticks at this interval while the loop runs
	TickInterval time.Duration `yaml:"tickInterval"`

	// period over which every runnable entity should run once, if zero default will be used
	TargetLatency time.Duration `yaml:"targetLatency"`

	// lower bound of a time slice, if zero default will be used
	MinGranularity time.Duration `yaml:"minGranularity"`

	// verify fairness index invariants after every mutation, panics on violation
	VerifyIndex bool `yaml:"verifyIndex"`
}

func DefaultOptions() *Options {
	return &Options{
		EventChannelLength: EventChannelLength,
		LogPrefix:          "fairsched",
		LogDebug:           false,
		TickInterval:       0,
		TargetLatency:      TargetLatency,
		MinGranularity:     MinGranularity,
		VerifyIndex:        false,
	}
}

// ParseOptions decodes YAML on top of DefaultOptions.
func ParseOptions(data []byte) (*Options, error) {
	options := DefaultOptions()
	if err := yaml.Unmarshal(data, options); err != nil {
		return nil, errors.Wrap(err, "decode options")
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read options %s", path)
	}

	options, err := ParseOptions(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load options %s", path)
	}
	return options, nil
}

func (o *Options) Validate() error {
	if o.TickInterval < 0 {
		return errors.Errorf("tickInterval must be >= 0, got %s", o.TickInterval)
	}
	if o.TargetLatency < 0 {
		return errors.Errorf("targetLatency must be >= 0, got %s", o.TargetLatency)
	}
	if o.MinGranularity < 0 {
		return errors.Errorf("minGranularity must be >= 0, got %s", o.MinGranularity)
	}
	if o.TargetLatency > 0 && o.MinGranularity > o.TargetLatency {
		return errors.Errorf("minGranularity %s exceeds targetLatency %s", o.MinGranularity, o.TargetLatency)
	}
	return nil
}
