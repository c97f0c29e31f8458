// Package core provides parameter sets and validation for rsacore key
// generation.
package core

import (
	"errors"
	"fmt"
	"strings"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/go-playground/validator/v10"
)

// DefaultPublicExponent is F4, the conventional RSA public exponent.
const DefaultPublicExponent = 65537

// DefaultExponentAttempts bounds the random public exponent search used
// when DefaultPublicExponent shares a factor with phi.
const DefaultExponentAttempts = 1000

// attemptsPerBit matches primality.AttemptsPerBit.
const attemptsPerBit = 100

// RSA1024Params is a demonstration-size parameter set.
var RSA1024Params = rsacore.Params{
	Level:          rsacore.RSA1024,
	Bits:           1024,
	Rounds:         40,
	PublicExponent: DefaultPublicExponent,
}

// RSA2048Params is the parameter set for a 2048-bit modulus.
var RSA2048Params = rsacore.Params{
	Level:          rsacore.RSA2048,
	Bits:           2048,
	Rounds:         40,
	PublicExponent: DefaultPublicExponent,
}

// RSA3072Params is the parameter set for a 3072-bit modulus.
var RSA3072Params = rsacore.Params{
	Level:          rsacore.RSA3072,
	Bits:           3072,
	Rounds:         64,
	PublicExponent: DefaultPublicExponent,
}

// RSA4096Params is the parameter set for a 4096-bit modulus.
var RSA4096Params = rsacore.Params{
	Level:          rsacore.RSA4096,
	Bits:           4096,
	Rounds:         64,
	PublicExponent: DefaultPublicExponent,
}

var levelBits = map[rsacore.SecurityLevel]int{
	rsacore.RSA1024: 1024,
	rsacore.RSA2048: 2048,
	rsacore.RSA3072: 3072,
	rsacore.RSA4096: 4096,
}

// GetParams returns the parameter set for the given security level.
func GetParams(level rsacore.SecurityLevel) (rsacore.Params, error) {
	switch level {
	case rsacore.RSA1024:
		return RSA1024Params, nil
	case rsacore.RSA2048:
		return RSA2048Params, nil
	case rsacore.RSA3072:
		return RSA3072Params, nil
	case rsacore.RSA4096:
		return RSA4096Params, nil
	default:
		return rsacore.Params{}, fmt.Errorf("%w: unknown security level: %s", rsacore.ErrInvalidParams, level)
	}
}

// CustomParams returns a parameter set for an arbitrary modulus size.
// rounds <= 0 selects 40 Miller-Rabin rounds.
func CustomParams(bits, rounds int) (rsacore.Params, error) {
	if rounds <= 0 {
		rounds = 40
	}
	params := rsacore.Params{
		Level:          rsacore.Custom,
		Bits:           bits,
		Rounds:         rounds,
		PublicExponent: DefaultPublicExponent,
	}
	if err := ValidateParams(params); err != nil {
		return rsacore.Params{}, err
	}
	return params, nil
}

// KeySizeValidation checks that a named security level carries its own
// modulus size. Custom parameter sets accept any size.
func KeySizeValidation(fl validator.FieldLevel) bool {
	level := rsacore.SecurityLevel(fl.Parent().FieldByName("Level").String())
	bits := int(fl.Field().Int())

	if level == rsacore.Custom {
		return true
	}
	want, ok := levelBits[level]
	return ok && bits == want
}

// ValidateParams validates the parameter set for consistency.
func ValidateParams(params rsacore.Params) error {
	validate := validator.New()
	if err := validate.RegisterValidation("keysize", KeySizeValidation); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}

	if err := validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: %s", rsacore.ErrInvalidParams, strings.Join(messages, "; "))
		}
		return fmt.Errorf("%w: %v", rsacore.ErrInvalidParams, err)
	}

	if params.PublicExponent%2 == 0 || !isPrime(params.PublicExponent) {
		return fmt.Errorf("%w: public exponent %d must be an odd prime", rsacore.ErrInvalidParams, params.PublicExponent)
	}
	return nil
}

// MaxPrimeAttempts returns the candidate bound for each prime of a key.
func MaxPrimeAttempts(params rsacore.Params) int {
	if params.MaxPrimeAttempts > 0 {
		return params.MaxPrimeAttempts
	}
	return attemptsPerBit * ((params.Bits + 1) / 2)
}

// MaxExponentAttempts returns the bound on random public exponent draws.
func MaxExponentAttempts(params rsacore.Params) int {
	if params.MaxExponentAttempts > 0 {
		return params.MaxExponentAttempts
	}
	return DefaultExponentAttempts
}

// isPrime checks if a number is prime using a simple trial division.
// This is used for validating parameters, not for generating large primes.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
