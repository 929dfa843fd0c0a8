package plant

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so metadata files can express sampling
// frequencies as strings like "10m" or "1h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ID wraps uuid.UUID for YAML decoding, which has no text-unmarshal support
// for byte arrays.
type ID uuid.UUID

// UnmarshalYAML implements yaml.Unmarshaler.
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := uuid.Parse(value.Value)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", value.Value, err)
	}
	*id = ID(parsed)
	return nil
}

// UUID returns the wrapped uuid.UUID.
func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// ReanalysisMeta describes one reanalysis product attached to the plant.
type ReanalysisMeta struct {
	Frequency     Duration `yaml:"frequency"`
	WindHeightM   float64  `yaml:"windHeightM"`
	LongTermYears int      `yaml:"longTermYears"`
}

// Metadata holds the static description of a wind plant, read from a YAML
// file alongside the operational data.
type Metadata struct {
	ID             ID                        `yaml:"id"`
	Name           string                    `yaml:"name"`
	Latitude       float64                   `yaml:"latitude"`
	Longitude      float64                   `yaml:"longitude"`
	CapacityMW     float64                   `yaml:"capacityMW"`
	NumTurbines    int                       `yaml:"numTurbines"`
	ScadaFrequency Duration                  `yaml:"scadaFrequency"`
	MeterFrequency Duration                  `yaml:"meterFrequency"`
	CurtailFreq    Duration                  `yaml:"curtailFrequency"`
	Timezone       string                    `yaml:"timezone"`
	Reanalysis     map[string]ReanalysisMeta `yaml:"reanalysis"`
}

// ReadMetadata reads and validates plant metadata from a YAML file.
func ReadMetadata(path string) (Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata file: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return Metadata{}, fmt.Errorf("unmarshal metadata: %w", err)
	}

	if meta.Name == "" {
		return Metadata{}, fmt.Errorf("metadata is missing a plant name")
	}
	if meta.CapacityMW <= 0 {
		return Metadata{}, fmt.Errorf("plant %q has non-positive capacity", meta.Name)
	}
	if meta.ScadaFrequency <= 0 {
		return Metadata{}, fmt.Errorf("plant %q has no SCADA frequency", meta.Name)
	}

	return meta, nil
}
