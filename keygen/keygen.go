// Package keygen implements RSA key-pair generation for rsacore.
package keygen

import (
	"fmt"
	"io"
	"math/big"
	"sync"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/core"
	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/primality"
	"github.com/BackendStack21/rsacore-go/utils"
)

// Domain separators for the seeded SHAKE256 streams.
const (
	DomainPrimeP     = "rsacore-keygen-p-v1"
	DomainPrimeQ     = "rsacore-keygen-q-v1"
	DomainExponent   = "rsacore-keygen-e-v1"
	DomainPassphrase = "rsacore-passphrase-v1"
)

// maxDistinctAttempts bounds how often q is redrawn when it equals p.
const maxDistinctAttempts = 8

// SeedSize is the minimum seed length accepted by GenerateKeyPairFromSeed.
const SeedSize = 32

// NewSeed returns SeedSize fresh random bytes for GenerateKeyPairFromSeed.
func NewSeed() ([]byte, error) {
	return utils.SecureRandomBytes(SeedSize)
}

// SeedFromPassphrase stretches a passphrase into a SeedSize seed.
// The result is only as strong as the passphrase.
func SeedFromPassphrase(passphrase string) []byte {
	return utils.Shake256(utils.HashWithDomain(DomainPassphrase, []byte(passphrase)), SeedSize)
}

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// GenerateKeyPair generates a key pair for the given security level.
func GenerateKeyPair(level rsacore.SecurityLevel) (*rsacore.KeyPair, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	return GenerateKeyPairWithParams(params)
}

// GenerateKeyPairWithParams generates a key pair from utils.RandReader.
// The prime factors are cleared before returning.
func GenerateKeyPairWithParams(params rsacore.Params) (*rsacore.KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	kp, factors, err := generate(params, true, utils.RandReader, utils.RandReader, utils.RandReader)
	if err != nil {
		return nil, err
	}
	clearFactors(factors)
	return kp, nil
}

// GenerateKeyPairWithFactors generates a key pair and also returns p, q
// and phi. random is read from a single goroutine, p first, then q, then
// the exponent search, so a deterministic reader gives reproducible keys.
func GenerateKeyPairWithFactors(params rsacore.Params, random io.Reader) (*rsacore.KeyPair, *rsacore.PrimeFactors, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, nil, err
	}
	return generate(params, false, random, random, random)
}

// GenerateKeyPairFromSeed generates a deterministic key pair from seed.
// Each prime and the exponent search read from their own SHAKE256 stream.
func GenerateKeyPairFromSeed(params rsacore.Params, seed []byte) (*rsacore.KeyPair, error) {
	if len(seed) < SeedSize {
		return nil, fmt.Errorf("%w: seed must be at least %d bytes", rsacore.ErrInvalidParams, SeedSize)
	}
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", rsacore.ErrInvalidParams, err)
	}
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}

	kp, factors, err := generate(params, true,
		utils.NewShake256Reader(DomainPrimeP, seed),
		utils.NewShake256Reader(DomainPrimeQ, seed),
		utils.NewShake256Reader(DomainExponent, seed),
	)
	if err != nil {
		return nil, err
	}
	clearFactors(factors)
	return kp, nil
}

// KeyPairFromPrimes builds the key pair for known primes p, q and public
// exponent e. It fails with ErrNoInverse when e is not coprime to phi.
func KeyPairFromPrimes(p, q, e *big.Int) (*rsacore.KeyPair, error) {
	if p == nil || q == nil || e == nil {
		return nil, fmt.Errorf("%w: p, q and e are required", rsacore.ErrInvalidParams)
	}
	if p.Cmp(q) == 0 {
		return nil, fmt.Errorf("%w: p and q must be distinct", rsacore.ErrInvalidParams)
	}
	if !primality.IsProbablePrime(p, primality.DefaultRounds) || !primality.IsProbablePrime(q, primality.DefaultRounds) {
		return nil, fmt.Errorf("%w: p and q must be prime", rsacore.ErrInvalidParams)
	}
	if e.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: public exponent must be greater than 1", rsacore.ErrInvalidParams)
	}

	kp, _, err := assemble(p, q, totient(p, q), e)
	return kp, err
}

// generate searches p and q in parallel when concurrent is set. pRand and
// qRand must then be safe to read from separate goroutines.
func generate(params rsacore.Params, concurrent bool, pRand, qRand, eRand io.Reader) (*rsacore.KeyPair, *rsacore.PrimeFactors, error) {
	pBits := (params.Bits + 1) / 2
	qBits := params.Bits / 2
	maxAttempts := core.MaxPrimeAttempts(params)

	var p, q *big.Int
	var pErr, qErr error

	if concurrent {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p, pErr = primality.GeneratePrime(pRand, pBits, params.Rounds, maxAttempts)
		}()
		go func() {
			defer wg.Done()
			q, qErr = primality.GeneratePrime(qRand, qBits, params.Rounds, maxAttempts)
		}()
		wg.Wait()
	} else {
		p, pErr = primality.GeneratePrime(pRand, pBits, params.Rounds, maxAttempts)
		if pErr == nil {
			q, qErr = primality.GeneratePrime(qRand, qBits, params.Rounds, maxAttempts)
		}
	}

	if pErr != nil {
		return nil, nil, pErr
	}
	if qErr != nil {
		return nil, nil, qErr
	}

	// p == q makes n a perfect square.
	for i := 0; p.Cmp(q) == 0; i++ {
		if i == maxDistinctAttempts {
			return nil, nil, fmt.Errorf("%w: could not draw distinct primes", rsacore.ErrKeyGeneration)
		}
		if q, qErr = primality.GeneratePrime(qRand, qBits, params.Rounds, maxAttempts); qErr != nil {
			return nil, nil, qErr
		}
	}

	phi := totient(p, q)
	e, err := chooseExponent(params, phi, eRand)
	if err != nil {
		return nil, nil, err
	}

	return assemble(p, q, phi, e)
}

// chooseExponent returns the configured public exponent when it is
// coprime to phi, otherwise a random coprime e in [2, phi-1].
func chooseExponent(params rsacore.Params, phi *big.Int, random io.Reader) (*big.Int, error) {
	e := big.NewInt(int64(params.PublicExponent))
	if numtheory.GCD(e, phi).Cmp(one) == 0 {
		return e, nil
	}

	hi := new(big.Int).Sub(phi, one)
	if hi.Cmp(two) < 0 {
		return nil, fmt.Errorf("%w: phi too small for a public exponent", rsacore.ErrKeyGeneration)
	}

	attempts := core.MaxExponentAttempts(params)
	for i := 0; i < attempts; i++ {
		e, err := utils.RandomRange(random, two, hi)
		if err != nil {
			return nil, fmt.Errorf("drawing public exponent: %w", err)
		}
		if numtheory.GCD(e, phi).Cmp(one) == 0 {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no public exponent coprime to phi after %d attempts", rsacore.ErrKeyGeneration, attempts)
}

func assemble(p, q, phi, e *big.Int) (*rsacore.KeyPair, *rsacore.PrimeFactors, error) {
	d, err := numtheory.ModInverse(e, phi)
	if err != nil {
		return nil, nil, err
	}

	check := new(big.Int).Mul(d, e)
	if check.Mod(check, phi).Cmp(one) != 0 {
		return nil, nil, fmt.Errorf("%w: d is not the inverse of e mod phi", rsacore.ErrKeyGeneration)
	}

	n := new(big.Int).Mul(p, q)
	kp := &rsacore.KeyPair{
		PublicKey:  rsacore.PublicKey{E: new(big.Int).Set(e), N: n},
		PrivateKey: rsacore.PrivateKey{D: d, N: new(big.Int).Set(n)},
	}
	factors := &rsacore.PrimeFactors{
		P:   new(big.Int).Set(p),
		Q:   new(big.Int).Set(q),
		Phi: phi,
	}
	return kp, factors, nil
}

// totient returns (p-1)(q-1).
func totient(p, q *big.Int) *big.Int {
	pm1 := new(big.Int).Sub(p, one)
	qm1 := new(big.Int).Sub(q, one)
	return pm1.Mul(pm1, qm1)
}

func clearFactors(f *rsacore.PrimeFactors) {
	if f == nil {
		return
	}
	utils.ZeroizeInt(f.P)
	utils.ZeroizeInt(f.Q)
	utils.ZeroizeInt(f.Phi)
}
