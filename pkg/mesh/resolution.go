package mesh

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ResolutionMode selects how a step count is derived.
type ResolutionMode int

const (
	ModeCount  ResolutionMode = iota // fixed step count
	ModeAngle                        // degrees of turn per step
	ModeLength                       // arclength per step
)

func (m ResolutionMode) String() string {
	switch m {
	case ModeCount:
		return "count"
	case ModeAngle:
		return "angle"
	case ModeLength:
		return "length"
	default:
		return "unknown"
	}
}

// Resolution is the global sampling policy: a mode plus its value.
type Resolution struct {
	Mode  ResolutionMode
	Value float64
}

// Default is the resolution used when a caller does not supply one:
// one step per 15 degrees of turn.
var Default = Resolution{Mode: ModeAngle, Value: 15}

// Steps derives a step count from the policy given the total turn angle
// (degrees) and total arclength of the region being sampled. The result
// is always at least 1.
func (r Resolution) Steps(totalAngle, totalLength float64) int {
	var n int
	switch r.Mode {
	case ModeCount:
		n = int(r.Value)
	case ModeAngle:
		if r.Value > 0 {
			n = int(math.Ceil(totalAngle / r.Value))
		}
	case ModeLength:
		if r.Value > 0 {
			n = int(math.Ceil(totalLength / r.Value))
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Settings is the YAML-loadable configuration surface.
type Settings struct {
	Resolution struct {
		Mode  string  `yaml:"mode"`
		Value float64 `yaml:"value"`
	} `yaml:"resolution"`
}

// LoadSettings parses YAML settings and returns the resolution policy
// they select.
func LoadSettings(data []byte) (Resolution, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Resolution{}, fmt.Errorf("settings: %w", err)
	}
	var mode ResolutionMode
	switch s.Resolution.Mode {
	case "count":
		mode = ModeCount
	case "angle":
		mode = ModeAngle
	case "length":
		mode = ModeLength
	case "":
		return Default, nil
	default:
		return Resolution{}, fmt.Errorf("settings: unknown resolution mode %q", s.Resolution.Mode)
	}
	if s.Resolution.Value <= 0 {
		return Resolution{}, fmt.Errorf("settings: resolution value must be positive, got %v", s.Resolution.Value)
	}
	return Resolution{Mode: mode, Value: s.Resolution.Value}, nil
}
