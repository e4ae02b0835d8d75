// Package config handles classrun.toml runtime configuration, the same
// way manifest.go handles maggie.toml: a plain TOML-tagged struct loaded
// with BurntSushi/toml, with defaults filled in after parsing. A CUE
// schema additionally constrains the raw document before it's unmarshalled,
// catching malformed knobs (negative stack size, empty classpath) with a
// clearer error than a zero-value default would produce silently.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
)

// Config is classrun's runtime configuration: the launcher's own knobs
// plus the ambient stack's settings.
type Config struct {
	Classpath  []string `toml:"classpath"`
	LibPath    []string `toml:"libpath"`
	StackWords int      `toml:"stack-words"`

	Crash   CrashConfig   `toml:"crash"`
	Profile ProfileConfig `toml:"profile"`
	Resolve ResolveConfig `toml:"resolve-cache"`
	Trace   bool          `toml:"trace"`

	// Dir is the directory containing the loaded classrun.toml (set at
	// load time, not read from the file itself).
	Dir string `toml:"-"`
}

// CrashConfig configures the uncaught-exception SQLite log.
type CrashConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db-path"`
}

// ProfileConfig configures the DuckDB opcode-frequency sink.
type ProfileConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db-path"`
}

// ResolveConfig configures the cross-run constant-pool resolution-hint
// cache.
type ResolveConfig struct {
	Enabled   bool   `toml:"enabled"`
	CachePath string `toml:"cache-path"`
}

// schema constrains the shape of a parsed classrun.toml document:
// stack-words must be positive, and classpath must name at least one
// root.
const schema = `
classpath: [string, ...string]
"stack-words"?: int & >0
libpath?: [...string]
trace?: bool
crash?: {
	enabled?: bool
	"db-path"?: string
}
profile?: {
	enabled?: bool
	"db-path"?: string
}
"resolve-cache"?: {
	enabled?: bool
	"cache-path"?: string
}
`

// Load parses and validates a classrun.toml file from dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "classrun.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	return parse(data, dir)
}

func parse(data []byte, dir string) (*Config, error) {
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("config: schema validation: %w", err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse error: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve path %s: %w", dir, err)
	}
	c.Dir = absDir

	if c.StackWords == 0 {
		c.StackWords = 65536
	}
	if c.Crash.DBPath == "" {
		c.Crash.DBPath = filepath.Join(absDir, ".classrun", "crashes.db")
	}
	if c.Profile.DBPath == "" {
		c.Profile.DBPath = filepath.Join(absDir, ".classrun", "profile.db")
	}
	if c.Resolve.CachePath == "" {
		c.Resolve.CachePath = filepath.Join(absDir, ".classrun", "rescache.cbor")
	}

	return &c, nil
}

// validate decodes data as a TOML document and checks it against schema,
// by converting the TOML value to CUE's internal representation through
// the shared cuecontext and unifying it with the compiled schema.
func validate(data []byte) error {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("decoding for validation: %w", err)
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	docVal := ctx.Encode(raw)
	if err := docVal.Err(); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	unified := schemaVal.Unify(docVal)
	return unified.Validate()
}
