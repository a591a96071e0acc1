package julia

import "testing"

func TestComplexMul(t *testing.T) {
	tests := []struct {
		name string
		a, b Complex
		want Complex
	}{
		{"real", Complex{2, 0}, Complex{3, 0}, Complex{6, 0}},
		{"i squared", Complex{0, 1}, Complex{0, 1}, Complex{-1, 0}},
		{"general", Complex{1, 2}, Complex{3, 4}, Complex{-5, 10}},
		{"square", Complex{-0.5, 0.25}, Complex{-0.5, 0.25}, Complex{0.1875, -0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Mul(tt.b)
			if got != tt.want {
				t.Errorf("%v * %v = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if c := tt.a.Complex128() * tt.b.Complex128(); complex(got.Re, got.Im) != c {
				t.Errorf("%v * %v = %v, complex128 gives %v", tt.a, tt.b, got, c)
			}
		})
	}
}

func TestComplexMulDoesNotAlias(t *testing.T) {
	z := Complex{1, 2}
	sq := z.Mul(z)
	if z != (Complex{1, 2}) {
		t.Fatalf("operand changed to %v", z)
	}
	if sq != (Complex{-3, 4}) {
		t.Errorf("z² = %v, want (-3+4i)", sq)
	}
}

func TestComplexAddAbs2(t *testing.T) {
	got := Complex{1, -2}.Add(Complex{0.5, 4})
	if got != (Complex{1.5, 2}) {
		t.Errorf("Add = %v", got)
	}
	if a := (Complex{3, 4}).Abs2(); a != 25 {
		t.Errorf("Abs2 = %v, want 25", a)
	}
}
