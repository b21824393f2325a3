package components

import (
	"math/rand/v2"
	"strings"

	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var confettiGlyphs = []string{"*", "✦", "•", "▪", "◆", "+"}

type particle struct {
	x, y   float64
	vx, vy float64
	glyph  string
	color  lipgloss.Color
}

// Confetti is a short burst of falling particles drawn in a fixed-height
// strip. Step advances it one frame; it is finished once every particle
// has fallen out of the strip.
type Confetti struct {
	width, height int
	parts         []particle
	frames        int
}

const maxConfettiFrames = 40

// NewConfetti bursts n particles across a width x height strip using the
// given colors. rng may be nil.
func NewConfetti(width, height, n int, colors []string, rng *rand.Rand) *Confetti {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if len(colors) == 0 {
		colors = []string{string(theme.Active.Accent)}
	}

	c := &Confetti{width: width, height: height}
	for i := 0; i < n; i++ {
		c.parts = append(c.parts, particle{
			x:     rng.Float64() * float64(width),
			y:     -rng.Float64() * float64(height),
			vx:    (rng.Float64() - 0.5) * 1.5,
			vy:    0.2 + rng.Float64()*0.4,
			glyph: confettiGlyphs[rng.IntN(len(confettiGlyphs))],
			color: lipgloss.Color(colors[rng.IntN(len(colors))]),
		})
	}
	return c
}

// Step advances every particle by one frame.
func (c *Confetti) Step() {
	c.frames++
	for i := range c.parts {
		p := &c.parts[i]
		p.x += p.vx
		p.y += p.vy
		p.vy += 0.05
		p.vx *= 0.96
	}
}

// Done reports whether the animation has finished.
func (c *Confetti) Done() bool {
	if c == nil || c.frames >= maxConfettiFrames {
		return true
	}
	for _, p := range c.parts {
		if p.y < float64(c.height) {
			return false
		}
	}
	return true
}

// Render draws the current frame as height lines of width cells.
func (c *Confetti) Render() string {
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Background)

	cells := make([][]string, c.height)
	for r := range cells {
		cells[r] = make([]string, c.width)
	}
	for _, p := range c.parts {
		x, y := int(p.x), int(p.y)
		if p.y < 0 || y >= c.height || p.x < 0 || x >= c.width {
			continue
		}
		cells[y][x] = lipgloss.NewStyle().Foreground(p.color).Background(t.Background).Render(p.glyph)
	}

	var b strings.Builder
	for r, row := range cells {
		for _, cell := range row {
			if cell == "" {
				b.WriteString(bg.Render(" "))
			} else {
				b.WriteString(cell)
			}
		}
		if r < len(cells)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
