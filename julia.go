package julia

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrInvalidSize   = errors.New("size must be positive")
	ErrInvalidBudget = errors.New("iteration budget must be positive")
)

// Params describes one Julia set render.
// The view always covers the square [-1, 1] x [-1, 1] shifted by the
// offsets; Size only changes the resolution.
type Params struct {
	C       Complex
	Size    int // image is Size x Size pixels
	Budget  int // iteration budget per pixel
	XOffset float64
	YOffset float64
	Workers int // goroutines used by Compute, <= 1 runs sequentially
}

// Validate checks the parameters the engine cannot work without.
func (p Params) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("size %d: %w", p.Size, ErrInvalidSize)
	}
	if p.Budget <= 0 {
		return fmt.Errorf("budget %d: %w", p.Budget, ErrInvalidBudget)
	}
	return nil
}

// WithDefaults fills a zero budget with the color maximum of s, which is
// how many iterations the colors of s can tell apart, and zero workers
// with the number of CPUs.
func (p Params) WithDefaults(s Scheme) Params {
	if p.Budget == 0 {
		p.Budget = s.Normalize().ColorMax()
	}
	if p.Workers == 0 {
		p.Workers = runtime.NumCPU()
	}
	return p
}

// Start maps pixel (x, y) to its starting point in the complex plane.
func (p Params) Start(x, y int) Complex {
	n := float64(p.Size)
	return Complex{
		Re: -1.0 + p.XOffset + 2.0/n*float64(x),
		Im: -1.0 + p.YOffset + 2.0/n*float64(y),
	}
}

// Preset is a named value of c worth looking at.
type Preset struct {
	Name string
	C    Complex
}

// Well known Julia sets
var (
	// Filaments with spiral arms, the classic first picture
	Spirals = Preset{Name: "spirals", C: Complex{Re: -0.39, Im: 0.6}}

	// Thin dust, slow to render at high budgets
	Dust = Preset{Name: "dust", C: Complex{Re: -0.39, Im: 0.5}}

	// Wide swirl arms
	Swirl = Preset{Name: "swirl", C: Complex{Re: -0.6, Im: 0.6}}

	// Douady's rabbit - three lobed period 3 components
	Rabbit = Preset{Name: "rabbit", C: Complex{Re: -0.123, Im: 0.745}}

	// Dendrite - connected set without interior
	Dendrite = Preset{Name: "dendrite", C: Complex{Re: 0, Im: 1}}

	// San Marco - the basilica seen in the lagoon
	SanMarco = Preset{Name: "sanmarco", C: Complex{Re: -0.75, Im: 0}}

	// Siegel disk - rotating quasi-circles around the fixed point
	SiegelDisk = Preset{Name: "siegel", C: Complex{Re: -0.391, Im: -0.587}}
)

var Presets = []Preset{Spirals, Dust, Swirl, Rabbit, Dendrite, SanMarco, SiegelDisk}

// PresetByName looks a preset up by its name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
