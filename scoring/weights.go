package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights tune the relative contribution of each scoring term. The defaults
// reproduce the production ranking; a YAML file can override them for
// experiments without a rebuild.
type Weights struct {
	SpreadExponent float64 `yaml:"spread_exponent"`
	DepthWeight    float64 `yaml:"depth_weight"`
	VolumeWeight   float64 `yaml:"volume_weight"`
	TradesWeight   float64 `yaml:"trades_weight"`
	BonusWeight    float64 `yaml:"bonus_weight"`
}

func DefaultWeights() Weights {
	return Weights{
		SpreadExponent: 3,
		DepthWeight:    1,
		VolumeWeight:   1,
		TradesWeight:   1,
		BonusWeight:    1,
	}
}

// LoadWeights reads a weights override file. An empty path returns the
// defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("cannot read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("cannot parse scoring config: %w", err)
	}
	if w.SpreadExponent <= 0 {
		return w, fmt.Errorf("spread_exponent must be positive")
	}
	return w, nil
}
