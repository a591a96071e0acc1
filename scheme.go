package julia

import "fmt"

// Scheme selects how iteration counts become colors.
//
// Bit 0 chooses single-color mode (a 0-255 ramp) over multicolor mode
// (a 24-bit index spread over all channels). In single-color mode bits 1, 2
// and 3 enable the red, green and blue channel: 11 is a magenta ramp,
// 15 is grey.
type Scheme int

const (
	SchemeSingle Scheme = 1 << iota
	SchemeRed
	SchemeGreen
	SchemeBlue
)

// DefaultScheme replaces the meaningless scheme 0.
const DefaultScheme = SchemeRed | SchemeGreen | SchemeBlue

const (
	singleColorMax = 256
	multiColorMax  = 256 * 256 * 256
)

// Normalize returns DefaultScheme for 0 and s otherwise.
func (s Scheme) Normalize() Scheme {
	if s == 0 {
		Logger().Warn("color scheme 0 does not make sense, using default", "scheme", int(DefaultScheme))
		return DefaultScheme
	}
	return s
}

func (s Scheme) SingleColor() bool {
	return s&SchemeSingle != 0
}

// ColorMax is the number of distinct color indices of the scheme.
func (s Scheme) ColorMax() int {
	if s.SingleColor() {
		return singleColorMax
	}
	return multiColorMax
}

// Channels reports which of R, G and B a single-color scheme lights.
func (s Scheme) Channels() [3]bool {
	return [3]bool{s&SchemeRed != 0, s&SchemeGreen != 0, s&SchemeBlue != 0}
}

func (s Scheme) String() string {
	mode := "multi"
	if s.SingleColor() {
		mode = "single"
	}
	ch := ""
	for i, on := range s.Channels() {
		if on {
			ch += string("RGB"[i])
		}
	}
	return fmt.Sprintf("%d(%s:%s)", int(s), mode, ch)
}
