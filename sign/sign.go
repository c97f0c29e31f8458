// Package sign implements textbook RSA signatures.
package sign

import (
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/utils"
)

// DigestBits is the size of the SHA3-256 digest signed by SignHashed.
const DigestBits = 256

// Sign returns s = m^d mod n. m must be in [0, n).
func Sign(sk *rsacore.PrivateKey, m *big.Int) (*big.Int, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil private key", rsacore.ErrInvalidKey)
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Sign() < 0 || m.Cmp(sk.N) >= 0 {
		return nil, fmt.Errorf("%w: message must be in [0, n)", rsacore.ErrMessageTooLarge)
	}
	return numtheory.ModPow(m, sk.D, sk.N), nil
}

// Verify reports whether s^e mod n equals m.
// Invalid keys and out-of-range values never verify.
func Verify(pk *rsacore.PublicKey, m, s *big.Int) bool {
	if pk == nil || pk.Validate() != nil {
		return false
	}
	if !inRange(m, pk.N) || !inRange(s, pk.N) {
		return false
	}

	recovered := numtheory.ModPow(s, pk.E, pk.N)

	// Compare fixed-width encodings so the comparison time does not depend
	// on where the values first differ.
	size := pk.Size()
	return utils.ConstantTimeEqual(
		recovered.FillBytes(make([]byte, size)),
		m.FillBytes(make([]byte, size)),
	)
}

// SignHashed signs the SHA3-256 digest of message.
// The modulus must be larger than 2^256.
func SignHashed(sk *rsacore.PrivateKey, message []byte) (*big.Int, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil private key", rsacore.ErrInvalidKey)
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	if sk.N.BitLen() <= DigestBits {
		return nil, fmt.Errorf("%w: %d-bit modulus cannot hold a %d-bit digest",
			rsacore.ErrMessageTooLarge, sk.N.BitLen(), DigestBits)
	}
	return Sign(sk, Digest(message))
}

// VerifyHashed reports whether s is a valid SignHashed signature of message.
func VerifyHashed(pk *rsacore.PublicKey, message []byte, s *big.Int) bool {
	if pk == nil || pk.N == nil || pk.N.BitLen() <= DigestBits {
		return false
	}
	return Verify(pk, Digest(message), s)
}

// Digest returns the SHA3-256 hash of message as an integer.
func Digest(message []byte) *big.Int {
	return new(big.Int).SetBytes(utils.SHA3256(message))
}

func inRange(v, n *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(n) < 0
}
