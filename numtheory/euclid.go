package numtheory

import (
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
)

// ExtendedGCD returns g = gcd(a, b) and Bezout coefficients x, y with
// a*x + b*y = g. It runs iteratively, so recursion depth is never a concern.
// g is never negative; ExtendedGCD(0, b) returns (|b|, 0, ±1).
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		// Truncated division keeps the sequence identical to the
		// classic recursive formulation for non-negative inputs.
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	g, _, _ := ExtendedGCD(a, b)
	return g
}

// ModInverse returns x in [0, m) with a*x ≡ 1 (mod m).
// It returns ErrNoInverse when gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, fmt.Errorf("%w: modulus must be positive", rsacore.ErrInvalidParams)
	}
	g, x, _ := ExtendedGCD(a, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) = %s", rsacore.ErrNoInverse, a, m, g)
	}
	return x.Mod(x, m), nil
}
