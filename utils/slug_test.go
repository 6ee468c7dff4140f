package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Board Game Night!":   "board-game-night",
		"  Smokers   Lounge ": "smokers-lounge",
		"C++ & Go":            "c-go",
		"already-sluggy":      "already-sluggy",
		"!!!":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
