// Package rsacore implements textbook RSA and its supporting number theory.
//
// WARNING: This is the unpadded RSA primitive. It is not constant time and
// applies no OAEP or PSS encoding. DO NOT use it to protect real data.
package rsacore

import (
	"fmt"
	"math/big"
)

// SecurityLevel names a modulus size preset.
type SecurityLevel string

const (
	// RSA1024 produces a 1024-bit modulus. Only suitable for demonstrations.
	RSA1024 SecurityLevel = "RSA-1024"
	// RSA2048 produces a 2048-bit modulus.
	RSA2048 SecurityLevel = "RSA-2048"
	// RSA3072 produces a 3072-bit modulus.
	RSA3072 SecurityLevel = "RSA-3072"
	// RSA4096 produces a 4096-bit modulus.
	RSA4096 SecurityLevel = "RSA-4096"
	// Custom marks parameters built from an explicit bit size.
	Custom SecurityLevel = "RSA-CUSTOM"
)

// =============================================================================
// Parameter Types
// =============================================================================

// Params contains the complete parameter set for key generation.
type Params struct {
	Level               SecurityLevel `json:"level" validate:"required"`
	Bits                int           `json:"bits" validate:"required,min=16,max=16384,keysize"`
	Rounds              int           `json:"rounds" validate:"required,min=1,max=256"` // Miller-Rabin rounds per candidate
	PublicExponent      int           `json:"public_exponent" validate:"required,min=3"`
	MaxPrimeAttempts    int           `json:"max_prime_attempts" validate:"min=0"`    // 0 selects 100 * prime bits
	MaxExponentAttempts int           `json:"max_exponent_attempts" validate:"min=0"` // 0 selects the default bound
}

// =============================================================================
// Key Types
// =============================================================================

// PublicKey is the pair (e, n).
type PublicKey struct {
	E *big.Int
	N *big.Int
}

// PrivateKey is the pair (d, n).
type PrivateKey struct {
	D *big.Int
	N *big.Int
}

// KeyPair contains both keys produced by one generation call.
type KeyPair struct {
	PublicKey  PublicKey
	PrivateKey PrivateKey
}

// PrimeFactors holds the secret values used while generating a key pair.
// They are only returned on request and are otherwise discarded.
type PrimeFactors struct {
	P   *big.Int
	Q   *big.Int
	Phi *big.Int // (p-1)(q-1)
}

// Validate checks that the key has a positive exponent and a modulus > 1.
func (k *PublicKey) Validate() error {
	return validateKey(k.E, k.N, "public exponent")
}

// Size returns the modulus length in bytes.
func (k *PublicKey) Size() int {
	return (k.N.BitLen() + 7) / 8
}

// Validate checks that the key has a positive exponent and a modulus > 1.
func (k *PrivateKey) Validate() error {
	return validateKey(k.D, k.N, "private exponent")
}

// Size returns the modulus length in bytes.
func (k *PrivateKey) Size() int {
	return (k.N.BitLen() + 7) / 8
}

func validateKey(exp, n *big.Int, name string) error {
	if exp == nil || n == nil {
		return fmt.Errorf("%w: missing %s or modulus", ErrInvalidKey, name)
	}
	if n.Cmp(big.NewInt(1)) <= 0 {
		return fmt.Errorf("%w: modulus must be greater than 1", ErrInvalidKey)
	}
	if exp.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidKey, name)
	}
	return nil
}
