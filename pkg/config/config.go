// Package config loads the tunable defaults for a Builder and for the CLI
// front-end. The teacher repo hardcodes its page size as a constant;
// following the pack's own precedent (dolthub-dolt loads tunables from
// TOML via github.com/BurntSushi/toml), this package exposes the same
// knobs as a small TOML file, falling back to compiled-in defaults when no
// file is given.
package config

import (
	"github.com/BurntSushi/toml"
)

// Defaults holds the tunable knobs a caller may want to override: the
// default bucket size for a freshly created Builder, and the chunk size
// pkg/persist.LoadLogged uses for its chunked reads.
type Defaults struct {
	MaxFill   int `toml:"maxfill"`
	ChunkSize int `toml:"chunk_size"`
}

// Standard returns the compiled-in defaults used when no config file is
// supplied.
func Standard() Defaults {
	return Defaults{
		MaxFill:   64,
		ChunkSize: 4096, // matches the teacher's storage.PageSize chunking unit
	}
}

// Load reads defaults from a TOML file at path, overlaying them onto
// Standard(). An empty path returns Standard() unchanged.
func Load(path string) (Defaults, error) {
	d := Standard()
	if path == "" {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}, err
	}
	return d, nil
}
