package keygen

import (
	"encoding/binary"
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/utils"
)

// SerializePublicKey encodes pk as len(E) ‖ E ‖ len(N) ‖ N with 4-byte
// little-endian lengths and big-endian magnitudes.
func SerializePublicKey(pk *rsacore.PublicKey) []byte {
	return serializePair(pk.E, pk.N)
}

// DeserializePublicKey decodes a public key produced by SerializePublicKey.
func DeserializePublicKey(data []byte) (*rsacore.PublicKey, error) {
	e, n, err := deserializePair(data)
	if err != nil {
		return nil, err
	}
	pk := &rsacore.PublicKey{E: e, N: n}
	if err := pk.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", rsacore.ErrInvalidEncoding, err)
	}
	return pk, nil
}

// SerializePrivateKey encodes sk as len(D) ‖ D ‖ len(N) ‖ N.
func SerializePrivateKey(sk *rsacore.PrivateKey) []byte {
	return serializePair(sk.D, sk.N)
}

// DeserializePrivateKey decodes a private key produced by SerializePrivateKey.
func DeserializePrivateKey(data []byte) (*rsacore.PrivateKey, error) {
	d, n, err := deserializePair(data)
	if err != nil {
		return nil, err
	}
	sk := &rsacore.PrivateKey{D: d, N: n}
	if err := sk.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", rsacore.ErrInvalidEncoding, err)
	}
	return sk, nil
}

// DomainFingerprint separates key fingerprints from other SHA3-256 uses.
const DomainFingerprint = "rsacore-fingerprint-v1"

// Fingerprint returns the domain-separated SHA3-256 hash of the serialized public key.
func Fingerprint(pk *rsacore.PublicKey) []byte {
	return utils.HashWithDomain(DomainFingerprint, SerializePublicKey(pk))
}

func serializePair(a, b *big.Int) []byte {
	aBytes := magnitude(a)
	bBytes := magnitude(b)

	result := make([]byte, 0, 8+len(aBytes)+len(bBytes))
	lenBuf := make([]byte, 4)

	binary.LittleEndian.PutUint32(lenBuf, uint32(len(aBytes)))
	result = append(result, lenBuf...)
	result = append(result, aBytes...)

	binary.LittleEndian.PutUint32(lenBuf, uint32(len(bBytes)))
	result = append(result, lenBuf...)
	result = append(result, bBytes...)

	return result
}

func deserializePair(data []byte) (*big.Int, *big.Int, error) {
	a, offset, err := readInt(data, 0)
	if err != nil {
		return nil, nil, err
	}
	b, offset, err := readInt(data, offset)
	if err != nil {
		return nil, nil, err
	}
	if offset != len(data) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", rsacore.ErrInvalidEncoding, len(data)-offset)
	}
	return a, b, nil
}

func readInt(data []byte, offset int) (*big.Int, int, error) {
	length, offset, err := utils.SafeReadLength(data, offset, utils.MaxIntegerBytes)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: %v", rsacore.ErrInvalidEncoding, err)
	}
	if err := utils.ValidateSliceAccess(data, offset, length); err != nil {
		return nil, offset, fmt.Errorf("%w: %v", rsacore.ErrInvalidEncoding, err)
	}
	return new(big.Int).SetBytes(data[offset : offset+length]), offset + length, nil
}

func magnitude(x *big.Int) []byte {
	if x == nil {
		return nil
	}
	return x.Bytes()
}
