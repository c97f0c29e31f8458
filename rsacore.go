// Package rsacore implements textbook RSA together with the number theory it
// is built from: modular exponentiation, the extended Euclidean algorithm,
// Miller-Rabin primality testing and random prime generation.
// This package holds the shared key and parameter types; the operations live
// in sub-packages that can be imported directly.
package rsacore

// Version of the rsacore Go implementation.
const Version = "1.0.0"

// API summary:
//
// Number theory:
//   - numtheory.ModPow(base, exp, mod) - Square-and-multiply modular exponentiation
//   - numtheory.ExtendedGCD(a, b) - gcd and Bezout coefficients
//   - numtheory.ModInverse(a, m) - Modular inverse, ErrNoInverse if gcd(a, m) != 1
//
// Primes:
//   - primality.IsProbablePrime(n, rounds) - Miller-Rabin test
//   - primality.GeneratePrime(random, bits, rounds, maxAttempts) - Bounded prime search
//
// Keys:
//   - keygen.GenerateKeyPair(level) - Generate a key pair for the given security level
//   - keygen.GenerateKeyPairFromSeed(params, seed) - Deterministic key pair
//   - keygen.KeyPairFromPrimes(p, q, e) - Key pair from known primes
//
// Encryption and signatures:
//   - cipher.Encrypt(pk, m) / cipher.Decrypt(sk, c)
//   - sign.Sign(sk, m) / sign.Verify(pk, m, s)
//
// Message encoding:
//   - codec.Encode(msg, n) / codec.Decode(v)
