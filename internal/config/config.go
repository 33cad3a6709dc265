// Package config reads the command-line flags and JIGSAW_* environment
// variables. Flags win over the environment.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/irfansharif/jigsaw/internal/board"
)

const (
	DefaultGrid   = 4
	DefaultWidth  = 1280
	DefaultHeight = 960
	MaxGrid       = 9 // difficulty keys go up to 9
)

// Config is the startup configuration.
type Config struct {
	Image  string // empty plays a generated image
	Grid   int
	Seed   int64
	Width  int
	Height int
	Hit    board.HitMode
}

// Load parses args (without the program name). getenv is consulted for
// anything the flags leave unset; nil means os.Getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{
		Grid:   DefaultGrid,
		Seed:   time.Now().Unix(),
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	if v := getenv("JIGSAW_IMAGE"); v != "" {
		cfg.Image = v
	}
	if v := getenv("JIGSAW_GRID"); v != "" {
		grid, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JIGSAW_GRID value '%s': %w", v, err)
		}
		cfg.Grid = grid
	}
	if v := getenv("JIGSAW_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid JIGSAW_SEED value '%s': %w", v, err)
		}
		cfg.Seed = seed
	}

	fs := flag.NewFlagSet("jigsaw", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Image, "image", cfg.Image, "path of the puzzle image (png, jpeg, gif, webp, bmp, tiff); empty for a generated one")
	fs.IntVar(&cfg.Grid, "grid", cfg.Grid, "pieces per row and column")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the topology and scatter")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "initial window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "initial window height")
	hit := fs.String("hit", board.HitBox.String(), "piece hit test: box or outline")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 && cfg.Image == "" {
		cfg.Image = fs.Arg(0)
	}

	switch *hit {
	case "box":
		cfg.Hit = board.HitBox
	case "outline":
		cfg.Hit = board.HitOutline
	default:
		return nil, fmt.Errorf("unknown hit test %q (want box or outline)", *hit)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if c.Grid < 2 || c.Grid > MaxGrid {
		return fmt.Errorf("grid size %d outside [2, %d]", c.Grid, MaxGrid)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	return nil
}
