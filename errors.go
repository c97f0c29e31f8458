package rsacore

import "errors"

var (
	// ErrKeyGeneration is returned when prime generation or the public
	// exponent search does not converge within its attempt bound.
	// Retrying with fresh randomness is safe.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrNoInverse is returned when a modular inverse is requested for
	// operands that are not coprime.
	ErrNoInverse = errors.New("modular inverse does not exist")

	// ErrMessageTooLarge is returned when a value passed to encrypt or sign
	// is not in [0, n).
	ErrMessageTooLarge = errors.New("message too large for modulus")

	// ErrInvalidKey is returned when a key is missing components or has a
	// modulus smaller than 2.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidParams is returned for out-of-range parameters.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrInvalidEncoding is returned when serialized data or an encoded
	// message block is malformed.
	ErrInvalidEncoding = errors.New("invalid encoding")
)
