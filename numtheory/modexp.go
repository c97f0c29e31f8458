// Package numtheory implements the modular arithmetic RSA is built on.
package numtheory

import "math/big"

var one = big.NewInt(1)

// ModPow computes base^exp mod m with right-to-left square-and-multiply.
// The result is always in [0, m). base is reduced modulo m first, so
// negative bases are accepted.
// Panics if m <= 0 or exp < 0.
func ModPow(base, exp, m *big.Int) *big.Int {
	if m.Sign() <= 0 {
		panic("numtheory: modulus must be positive")
	}
	if exp.Sign() < 0 {
		panic("numtheory: exponent must be non-negative")
	}
	if m.Cmp(one) == 0 {
		return new(big.Int)
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, m)
	e := new(big.Int).Set(exp)

	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Mod(result, m)
		}
		b.Mul(b, b)
		b.Mod(b, m)
		e.Rsh(e, 1)
	}
	return result
}
