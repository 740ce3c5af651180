// Package config holds the tunables of a frame stack and reads them from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/chunk"
	"github.com/iarwain/r3/pkg/dstack"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/sys"
)

// Config is the configuration of a frame stack.
type Config struct {
	// Number of cell slots in a page of the chunk stack.
	PageSlots int `yaml:"page-slots" json:"pageSlots"`
	// Initial capacity and maximum length of the data stack.
	StackInitial int `yaml:"stack-initial" json:"stackInitial"`
	StackLimit   int `yaml:"stack-limit" json:"stackLimit"`
	// Poison released slots and verify function resolution.
	Debug bool `yaml:"debug" json:"debug"`
}

// Default returns the default configuration. A page of the chunk stack spans
// one memory page worth of cells.
func Default() Config {
	return Config{
		PageSlots:    max(sys.PageSize()/int(unsafe.Sizeof(cell.Value{})), chunk.MinPageSlots),
		StackInitial: 128,
		StackLimit:   dstack.DefaultLimit,
	}
}

// Load reads the configuration from a YAML file. Fields missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses YAML configuration. Unknown fields are errors. Fields missing
// from the data keep their default values, except that the default
// stack-initial is lowered to stack-limit.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	// The default initial capacity follows a lower stack-limit.
	var given struct {
		StackInitial *int `yaml:"stack-initial"`
	}
	if err := yaml.Unmarshal(data, &given); err != nil {
		return Config{}, err
	}
	if given.StackInitial == nil {
		cfg.StackInitial = min(cfg.StackInitial, cfg.StackLimit)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the values can be used to build a frame stack.
func (cfg Config) Validate() error {
	if cfg.PageSlots < chunk.MinPageSlots {
		return errs.OutOfRange{What: "page-slots",
			ValidLow: chunk.MinPageSlots, ValidHigh: -1, Actual: cfg.PageSlots}
	}
	if cfg.StackLimit < 1 {
		return errs.OutOfRange{What: "stack-limit",
			ValidLow: 1, ValidHigh: -1, Actual: cfg.StackLimit}
	}
	if cfg.StackInitial < 1 || cfg.StackInitial > cfg.StackLimit {
		return errs.OutOfRange{What: "stack-initial",
			ValidLow: 1, ValidHigh: cfg.StackLimit, Actual: cfg.StackInitial}
	}
	return nil
}
