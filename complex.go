package julia

// Complex is a complex number kept as two float64 parts.
// All operations return a new value; operands are never modified.
type Complex struct {
	Re, Im float64
}

func (a Complex) Add(b Complex) Complex {
	return Complex{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

// Mul returns (ac - bd) + (ad + bc)i. Both parts are computed from the
// operands before the result is built, so a.Mul(a) is safe.
// The float64 conversions stop the compiler from fusing multiply-adds,
// which keeps escape counts identical across architectures.
func (a Complex) Mul(b Complex) Complex {
	re := float64(a.Re*b.Re) - float64(a.Im*b.Im)
	im := float64(a.Re*b.Im) + float64(a.Im*b.Re)
	return Complex{Re: re, Im: im}
}

// Abs2 is the squared magnitude.
func (a Complex) Abs2() float64 {
	return float64(a.Re*a.Re) + float64(a.Im*a.Im)
}

func (a Complex) Complex128() complex128 {
	return complex(a.Re, a.Im)
}
