package tracker

import "math/rand/v2"

// Palettes are the built-in three-stop gradients a new habit can get.
var Palettes = [][]string{
	{"#ff7eb3", "#ff758c", "#ffb347"},
	{"#7ce1ff", "#5ee7df", "#a78bfa"},
	{"#ffd86b", "#ffb86b", "#ff8a65"},
	{"#a6ffcb", "#67f3a6", "#34b3ff"},
	{"#ffd6f5", "#ffa6f3", "#c39cff"},
	{"#b8f18b", "#78ffb6", "#32d6b6"},
	{"#ffd4b5", "#ff8fb1", "#ff6969"},
}

// PaletteFunc picks the color gradient for a new habit.
type PaletteFunc func() []string

// RandomPalette picks uniformly from Palettes.
func RandomPalette() []string {
	p := Palettes[rand.IntN(len(Palettes))]
	return append([]string(nil), p...)
}

// FixedPalette always returns Palettes[i], wrapping out-of-range indexes.
func FixedPalette(i int) PaletteFunc {
	n := len(Palettes)
	i = ((i % n) + n) % n
	return func() []string {
		return append([]string(nil), Palettes[i]...)
	}
}

// CyclePalette hands out Palettes in order, starting over after the last.
// count reports how many habits exist, so the order survives restarts.
func CyclePalette(count func() int) PaletteFunc {
	return func() []string {
		return FixedPalette(count())()
	}
}
