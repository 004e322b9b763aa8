package maps

import (
	"fmt"

	"frontier/internal/game"
)

var glyphs = map[byte]game.Terrain{
	'.': game.Plains,
	'f': game.Forest,
	'^': game.Hill,
	'~': game.Water,
}

// ParseGlyph converts a map file character to a terrain kind.
func ParseGlyph(b byte) (game.Terrain, error) {
	t, ok := glyphs[b]
	if !ok {
		return "", fmt.Errorf("unknown terrain glyph %q", b)
	}
	return t, nil
}

// Glyph returns the map file character for a terrain kind.
func Glyph(t game.Terrain) byte {
	for b, tt := range glyphs {
		if tt == t {
			return b
		}
	}
	return '?'
}
