// Package primality implements Miller-Rabin probable-prime testing and
// random prime generation for rsacore.
package primality

import (
	"io"
	"math/big"

	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/utils"
)

// DefaultRounds is the number of Miller-Rabin rounds used when a caller
// passes rounds <= 0. A composite survives all rounds with probability at
// most 4^-40.
const DefaultRounds = 40

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsProbablePrime reports whether n passes the given number of Miller-Rabin
// rounds, drawing witnesses from utils.RandReader.
// If the entropy source fails the result is false: n is never reported
// prime without being tested.
func IsProbablePrime(n *big.Int, rounds int) bool {
	ok, err := ProbablyPrime(utils.RandReader, n, rounds)
	return err == nil && ok
}

// ProbablyPrime runs the Miller-Rabin test on n with witnesses drawn
// uniformly from [2, n-2] using random.
// A false result is definitive: n is composite. A true result is wrong for
// a composite n with probability at most 4^-rounds.
func ProbablyPrime(random io.Reader, n *big.Int, rounds int) (bool, error) {
	if n == nil {
		return false, nil
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if n.Cmp(three) <= 0 {
		return n.Cmp(one) > 0, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	// n - 1 = 2^s * d with d odd
	nMinus1 := new(big.Int).Sub(n, one)
	s := nMinus1.TrailingZeroBits()
	d := new(big.Int).Rsh(nMinus1, s)
	nMinus2 := new(big.Int).Sub(n, two)

	for i := 0; i < rounds; i++ {
		a, err := utils.RandomRange(random, two, nMinus2)
		if err != nil {
			return false, err
		}

		x := numtheory.ModPow(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}

		witnessed := true
		for r := uint(1); r < s; r++ {
			x = numtheory.ModPow(x, two, n)
			if x.Cmp(nMinus1) == 0 {
				witnessed = false
				break
			}
		}
		if witnessed {
			return false, nil
		}
	}

	return true, nil
}
