package commands

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/google/uuid"
)

// SignatureAlgorithm names the scheme written into signature exports.
const SignatureAlgorithm = "RSA-SHA3-256"

// KeyExport is the JSON form of a key pair, or of a public key alone when
// PrivateKey is empty.
type KeyExport struct {
	ID          string `json:"id"`
	Level       string `json:"level"`
	Bits        int    `json:"bits"`
	PublicKey   string `json:"public_key"`
	PrivateKey  string `json:"private_key,omitempty"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
}

// CiphertextExport represents an encrypted message, one entry per block.
type CiphertextExport struct {
	KeyFingerprint string   `json:"key_fingerprint"`
	Blocks         []string `json:"blocks"`
}

// SignatureExport represents a signature over a message digest.
type SignatureExport struct {
	KeyFingerprint string `json:"key_fingerprint"`
	Algorithm      string `json:"algorithm"`
	Signature      string `json:"signature"`
}

func newKeyExport(level rsacore.SecurityLevel, kp *rsacore.KeyPair) *KeyExport {
	return &KeyExport{
		ID:          uuid.New().String(),
		Level:       string(level),
		Bits:        kp.PublicKey.N.BitLen(),
		PublicKey:   base64.StdEncoding.EncodeToString(keygen.SerializePublicKey(&kp.PublicKey)),
		PrivateKey:  base64.StdEncoding.EncodeToString(keygen.SerializePrivateKey(&kp.PrivateKey)),
		Fingerprint: hex.EncodeToString(keygen.Fingerprint(&kp.PublicKey)),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Public returns a copy of e without the private key.
func (e *KeyExport) Public() *KeyExport {
	pub := *e
	pub.PrivateKey = ""
	return &pub
}

// PublicKeyValue decodes the public key.
func (e *KeyExport) PublicKeyValue() (*rsacore.PublicKey, error) {
	data, err := base64.StdEncoding.DecodeString(e.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	return keygen.DeserializePublicKey(data)
}

// PrivateKeyValue decodes the private key.
func (e *KeyExport) PrivateKeyValue() (*rsacore.PrivateKey, error) {
	if e.PrivateKey == "" {
		return nil, fmt.Errorf("key %s has no private key", e.ID)
	}
	data, err := base64.StdEncoding.DecodeString(e.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}
	return keygen.DeserializePrivateKey(data)
}

func loadKeyExport(filename string) (*KeyExport, error) {
	data, err := readInputFile(filename)
	if err != nil {
		return nil, err
	}
	var e KeyExport
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing key file %s: %w", filename, err)
	}
	return &e, nil
}

func loadCiphertext(filename string) (*CiphertextExport, []*big.Int, error) {
	data, err := readInputFile(filename)
	if err != nil {
		return nil, nil, err
	}
	var e CiphertextExport
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, nil, fmt.Errorf("parsing ciphertext file %s: %w", filename, err)
	}
	blocks := make([]*big.Int, len(e.Blocks))
	for i, b := range e.Blocks {
		if blocks[i], err = decodeInt(b); err != nil {
			return nil, nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return &e, blocks, nil
}

func loadSignature(filename string) (*SignatureExport, *big.Int, error) {
	data, err := readInputFile(filename)
	if err != nil {
		return nil, nil, err
	}
	var e SignatureExport
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, nil, fmt.Errorf("parsing signature file %s: %w", filename, err)
	}
	if e.Algorithm != SignatureAlgorithm {
		return nil, nil, fmt.Errorf("unsupported signature algorithm: %q", e.Algorithm)
	}
	s, err := decodeInt(e.Signature)
	if err != nil {
		return nil, nil, fmt.Errorf("signature: %w", err)
	}
	return &e, s, nil
}

func encodeInt(x *big.Int) string {
	return base64.StdEncoding.EncodeToString(x.Bytes())
}

func decodeInt(s string) (*big.Int, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

func marshalExport(v interface{}) ([]byte, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling output: %w", err)
	}
	return append(output, '\n'), nil
}
