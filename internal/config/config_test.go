package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/jigsaw/internal/board"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want Config
	}{
		{
			name: "flags",
			args: []string{"-image", "cat.png", "-grid", "6", "-seed", "7", "-hit", "outline"},
			want: Config{Image: "cat.png", Grid: 6, Seed: 7, Width: DefaultWidth, Height: DefaultHeight, Hit: board.HitOutline},
		},
		{
			name: "environment",
			env:  map[string]string{"JIGSAW_IMAGE": "dog.jpg", "JIGSAW_GRID": "3", "JIGSAW_SEED": "99"},
			want: Config{Image: "dog.jpg", Grid: 3, Seed: 99, Width: DefaultWidth, Height: DefaultHeight},
		},
		{
			name: "flags override environment",
			args: []string{"-grid", "5", "-width", "640", "-height", "480"},
			env:  map[string]string{"JIGSAW_IMAGE": "dog.jpg", "JIGSAW_GRID": "3", "JIGSAW_SEED": "1"},
			want: Config{Image: "dog.jpg", Grid: 5, Seed: 1, Width: 640, Height: 480},
		},
		{
			name: "positional image",
			args: []string{"-seed", "2", "bird.webp"},
			want: Config{Image: "bird.webp", Grid: DefaultGrid, Seed: 2, Width: DefaultWidth, Height: DefaultHeight},
		},
		{
			name: "no image",
			args: []string{"-seed", "3"},
			want: Config{Grid: DefaultGrid, Seed: 3, Width: DefaultWidth, Height: DefaultHeight},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args, env(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "grid too small", args: []string{"-image", "a.png", "-grid", "1"}},
		{name: "grid too large", args: []string{"-image", "a.png", "-grid", "12"}},
		{name: "bad hit mode", args: []string{"-image", "a.png", "-hit", "pixel"}},
		{name: "bad size", args: []string{"-image", "a.png", "-width", "0"}},
		{name: "unknown flag", args: []string{"-image", "a.png", "-nope"}},
		{name: "bad env grid", env: map[string]string{"JIGSAW_IMAGE": "a.png", "JIGSAW_GRID": "four"}},
		{name: "bad env seed", env: map[string]string{"JIGSAW_IMAGE": "a.png", "JIGSAW_SEED": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestSeedDefaultsToNow(t *testing.T) {
	cfg, err := Load([]string{"-image", "a.png"}, env(nil))
	require.NoError(t, err)
	assert.NotZero(t, cfg.Seed)
}
