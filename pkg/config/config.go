// Package config holds the settings of one penmap run. Defaults come from
// the environment and are overridden by command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/compiler"
)

// Output modes.
const (
	ModeMap  = "map"
	ModeText = "txt"
)

// Config is the full set of run settings.
type Config struct {
	// Output is the output path, "-" for stdout.
	Output string
	Mode   string
	// Defaults is a Lisp (or .ss define) script merged over the built-in
	// texture and colour tables.
	Defaults string

	Stepped    bool
	Compiler   compiler.Options
	Deathmatch bool

	// Random expands texture templates with a pseudo-random source seeded
	// with Seed instead of always taking the first choice.
	Random bool
	Seed   int64

	// Plan is a PNG path for the rendered plan, CellPx its cell size.
	Plan   string
	CellPx int
	// Preview is a JSON path for the preview meshes, MeshCells their
	// marching cubes resolution.
	Preview   string
	MeshCells int

	Terminal bool
	Stats    bool
	Verbose  bool
}

// Load returns the defaults, taking PENMAP_* environment variables into
// account.
func Load() *Config {
	opts := compiler.DefaultOptions()
	opts.Optimise = getEnvAsBool("PENMAP_OPTIMISE", opts.Optimise)
	opts.Visportals = getEnvAsBool("PENMAP_VISPORTALS", opts.Visportals)
	return &Config{
		Output:     getEnv("PENMAP_OUTPUT", "-"),
		Mode:       getEnv("PENMAP_MODE", ModeMap),
		Defaults:   getEnv("PENMAP_DEFAULTS", ""),
		Stepped:    getEnvAsBool("PENMAP_STEPS", false),
		Compiler:   opts,
		Deathmatch: getEnvAsBool("PENMAP_DEATHMATCH", false),
		Random:     getEnvAsBool("PENMAP_RANDOM", false),
		Seed:       int64(getEnvAsInt("PENMAP_SEED", 1)),
		CellPx:     getEnvAsInt("PENMAP_CELL_PX", 16),
		MeshCells:  getEnvAsInt("PENMAP_MESH_CELLS", 200),
		Verbose:    getEnvAsBool("PENMAP_VERBOSE", false),
	}
}

// RegisterFlags binds every setting to a flag of fs, using the current
// values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Output, "o", c.Output, "output file, - for stdout")
	fs.StringVar(&c.Mode, "m", c.Mode, "output mode: map or txt")
	fs.StringVar(&c.Defaults, "d", c.Defaults, "defaults script (Lisp, or .ss defines)")
	fs.BoolVar(&c.Stepped, "steps", c.Stepped, "put neighbouring rooms on different floor levels")
	fs.BoolVar(&c.Compiler.Optimise, "O", c.Compiler.Optimise, "merge neighbouring cuboids (-O=false keeps one per submission)")
	fs.BoolVar(&c.Compiler.Visportals, "p", c.Compiler.Visportals, "close open and closed doorways with visportals")
	fs.BoolVar(&c.Compiler.Pitched, "pitched", c.Compiler.Pitched, "pitched roofs on four walled rooms")
	fs.BoolVar(&c.Compiler.Beams, "beams", c.Compiler.Beams, "ceiling beams on four walled rooms")
	fs.BoolVar(&c.Compiler.Candles, "candles", c.Compiler.Candles, "candle lights on ceiling beams")
	fs.BoolVar(&c.Compiler.PillarLights, "pillar-lights", c.Compiler.PillarLights, "build MID lights on pillars")
	fs.BoolVar(&c.Compiler.FloorLights, "floor-lights", c.Compiler.FloorLights, "build FLOOR lights")
	fs.BoolVar(&c.Compiler.CeilingLights, "ceiling-lights", c.Compiler.CeilingLights, "build CEILING lights")
	fs.BoolVar(&c.Deathmatch, "deathmatch", c.Deathmatch, "write a deathmatch start instead of a player start")
	fs.BoolVar(&c.Random, "random", c.Random, "pick texture template choices at random")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for -random")
	fs.StringVar(&c.Plan, "g", c.Plan, "write the plan as a PNG image")
	fs.IntVar(&c.CellPx, "cell", c.CellPx, "plan cell size in pixels")
	fs.StringVar(&c.Preview, "P", c.Preview, "write preview meshes as JSON")
	fs.BoolVar(&c.Terminal, "t", c.Terminal, "show the plan in the terminal")
	fs.BoolVar(&c.Stats, "s", c.Stats, "print statistics")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "verbose progress")
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Mode != ModeMap && c.Mode != ModeText {
		return errors.Errorf("unknown output mode %q, want %s or %s", c.Mode, ModeMap, ModeText)
	}
	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if c.CellPx < 2 || c.CellPx > 256 {
		return errors.Errorf("cell size %d is out of range 2..256", c.CellPx)
	}
	if c.MeshCells < 1 {
		return errors.Errorf("mesh resolution %d must be positive", c.MeshCells)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
