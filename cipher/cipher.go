// Package cipher implements textbook RSA encryption and decryption.
//
// There is no padding: equal plaintexts give equal ciphertexts and the
// scheme is malleable. It exists for teaching and testing.
package cipher

import (
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/codec"
	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/utils"
)

// Encrypt returns m^e mod n. m must be in [0, n).
func Encrypt(pk *rsacore.PublicKey, m *big.Int) (*big.Int, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", rsacore.ErrInvalidKey)
	}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(m, pk.N); err != nil {
		return nil, err
	}
	return numtheory.ModPow(m, pk.E, pk.N), nil
}

// Decrypt returns c^d mod n. Any integer c is accepted; values outside
// [0, n) are reduced modulo n first.
func Decrypt(sk *rsacore.PrivateKey, c *big.Int) (*big.Int, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil private key", rsacore.ErrInvalidKey)
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: missing ciphertext", rsacore.ErrInvalidParams)
	}
	return numtheory.ModPow(c, sk.D, sk.N), nil
}

// EncryptMessage encodes msg into blocks that fit the modulus and encrypts
// each block.
func EncryptMessage(pk *rsacore.PublicKey, msg []byte) ([]*big.Int, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", rsacore.ErrInvalidKey)
	}
	if err := pk.Validate(); err != nil {
		return nil, err
	}

	blocks, err := codec.EncodeBlocks(msg, pk.N)
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		if blocks[i], err = Encrypt(pk, b); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// DecryptMessage decrypts the blocks produced by EncryptMessage and decodes
// the original bytes.
func DecryptMessage(sk *rsacore.PrivateKey, ciphertext []*big.Int) ([]byte, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil private key", rsacore.ErrInvalidKey)
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	if err := utils.CheckLength(len(ciphertext), utils.MaxBlocks); err != nil {
		return nil, fmt.Errorf("%w: %v", rsacore.ErrInvalidEncoding, err)
	}

	plain := make([]*big.Int, len(ciphertext))
	for i, c := range ciphertext {
		m, err := Decrypt(sk, c)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		plain[i] = m
	}
	return codec.DecodeBlocks(plain)
}

func checkRange(v, n *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: missing value", rsacore.ErrMessageTooLarge)
	}
	if v.Sign() < 0 || v.Cmp(n) >= 0 {
		return fmt.Errorf("%w: value must be in [0, n)", rsacore.ErrMessageTooLarge)
	}
	return nil
}
