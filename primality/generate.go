package primality

import (
	"fmt"
	"io"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/utils"
)

// AttemptsPerBit scales the default candidate bound of GeneratePrime.
const AttemptsPerBit = 100

// Odd primes up to 53 and their product, which fits in a uint64.
var (
	smallPrimes        = []uint8{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}
	smallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)
)

// GeneratePrime returns a probable prime with exactly bits bits.
// Candidates are read from random with the top and low bits forced to 1
// and tested with rounds Miller-Rabin rounds. After maxAttempts candidates
// (AttemptsPerBit * bits when maxAttempts <= 0) it gives up with
// ErrKeyGeneration instead of looping forever on a broken entropy source.
func GeneratePrime(random io.Reader, bits, rounds, maxAttempts int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("%w: prime size must be at least 2 bits, got %d", rsacore.ErrInvalidParams, bits)
	}
	if maxAttempts <= 0 {
		maxAttempts = AttemptsPerBit * bits
	}

	buf := make([]byte, (bits+7)/8)
	defer utils.Zeroize(buf)

	// Number of unused high bits in buf[0].
	excess := uint(len(buf)*8 - bits)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("reading prime candidate: %w", err)
		}

		buf[0] &= 0xff >> excess
		buf[0] |= 0x80 >> excess
		buf[len(buf)-1] |= 1

		candidate := new(big.Int).SetBytes(buf)
		if hasSmallFactor(candidate) {
			continue
		}

		ok, err := ProbablyPrime(random, candidate, rounds)
		if err != nil {
			return nil, fmt.Errorf("testing prime candidate: %w", err)
		}
		if ok {
			return candidate, nil
		}
	}

	return nil, fmt.Errorf("%w: no %d-bit prime found after %d attempts", rsacore.ErrKeyGeneration, bits, maxAttempts)
}

// hasSmallFactor reports whether n has an odd prime factor <= 53.
// Values below 64 are left to Miller-Rabin so the small primes themselves
// are never rejected.
func hasSmallFactor(n *big.Int) bool {
	if n.BitLen() <= 6 {
		return false
	}
	r := new(big.Int).Mod(n, smallPrimesProduct).Uint64()
	for _, p := range smallPrimes {
		if r%uint64(p) == 0 {
			return true
		}
	}
	return false
}
