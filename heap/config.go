package heap

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the heap's tunable initial capacities. Any field left at
// zero falls back to the matching spec default. Grounded on
// manifest/manifest.go's Load (read file, toml.Unmarshal, apply defaults).
type Config struct {
	ObjectTableCapacity int `toml:"object_table_capacity"`
	ClassTableCapacity  int `toml:"class_table_capacity"`
	WorklistCapacity    int `toml:"worklist_capacity"`
}

// Default initial capacities, chosen the way original_source/vm/heap.cc's
// constructor picks them (class table 1024, worklist 1KB, object table
// 8KB) scaled down for a library meant to run one heap per test rather
// than one heap per process.
const (
	defaultObjectTableCapacity = 256
	defaultClassTableCapacity  = 128
	defaultWorklistCapacity    = 64
)

func (c *Config) applyDefaults() {
	if c.ObjectTableCapacity == 0 {
		c.ObjectTableCapacity = defaultObjectTableCapacity
	}
	if c.ClassTableCapacity == 0 {
		c.ClassTableCapacity = defaultClassTableCapacity
	}
	if c.WorklistCapacity == 0 {
		c.WorklistCapacity = defaultWorklistCapacity
	}
}

// LoadConfig reads a heap.toml file from path, applying spec defaults to
// any field it leaves zero. A missing file is not an error: it returns
// the all-defaults Config, matching this package's tolerance of running
// with no configuration at all.
func LoadConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.applyDefaults()
			return c, nil
		}
		return c, fmt.Errorf("heap: cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("heap: parse error in %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}
