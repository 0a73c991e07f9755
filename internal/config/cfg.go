package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/gompdf/repaginate/internal/pagination"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	DocumentConfig struct {
		PageSize          string                `yaml:"page_size" validate:"oneof=A3 A4 A5 Letter Legal"`
		Orientation       string                `yaml:"orientation" validate:"oneof=portrait landscape"`
		PageCapacity      float64               `yaml:"page_capacity" validate:"gte=0"`
		Locale            string                `yaml:"locale" validate:"required,bcp47_language_tag"`
		FractionDigits    int                   `yaml:"fraction_digits" validate:"min=0,max=6"`
		Progress          string                `yaml:"progress" validate:"oneof=force skip"`
		Strict            bool                  `yaml:"strict"`
		UserStylesheet    string                `yaml:"user_stylesheet" sanitize:"assure_file_access" validate:"omitempty,filepath"`
		ResourcePaths     []string              `yaml:"resource_paths" validate:"dive,required"`
		Timeout           time.Duration         `yaml:"timeout" validate:"gte=0"`
		Author            string                `yaml:"author"`
		RenderBackgrounds bool                  `yaml:"render_backgrounds"`
		RenderBorders     bool                  `yaml:"render_borders"`
		DebugBoxes        bool                  `yaml:"debug_boxes"`
		Vocabulary        pagination.Vocabulary `yaml:"vocabulary"`
		Defaults          map[string]string     `yaml:"defaults"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Document DocumentConfig `yaml:"document"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
