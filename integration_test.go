package rsacore_test

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/cipher"
	"github.com/BackendStack21/rsacore-go/codec"
	"github.com/BackendStack21/rsacore-go/core"
	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/sign"
	"github.com/BackendStack21/rsacore-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextbookScenario(t *testing.T) {
	p, q, e := big.NewInt(61), big.NewInt(53), big.NewInt(17)

	kp, err := keygen.KeyPairFromPrimes(p, q, e)
	require.NoError(t, err)
	assert.Equal(t, int64(3233), kp.PublicKey.N.Int64())
	assert.Equal(t, int64(2753), kp.PrivateKey.D.Int64())

	c, err := cipher.Encrypt(&kp.PublicKey, big.NewInt(65))
	require.NoError(t, err)
	assert.Equal(t, int64(2790), c.Int64())

	m, err := cipher.Decrypt(&kp.PrivateKey, c)
	require.NoError(t, err)
	assert.Equal(t, int64(65), m.Int64())

	s, err := sign.Sign(&kp.PrivateKey, big.NewInt(65))
	require.NoError(t, err)
	assert.True(t, sign.Verify(&kp.PublicKey, big.NewInt(65), s))
	assert.False(t, sign.Verify(&kp.PublicKey, big.NewInt(66), s))
}

func TestFullRoundTrip_RSA1024(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1024-bit key generation in short mode")
	}
	kp, err := keygen.GenerateKeyPair(rsacore.RSA1024)
	require.NoError(t, err)
	assert.Contains(t, []int{1023, 1024}, kp.PublicKey.N.BitLen())

	msg := []byte("Textbook RSA round trip through the block codec")
	ct, err := cipher.EncryptMessage(&kp.PublicKey, msg)
	require.NoError(t, err)
	pt, err := cipher.DecryptMessage(&kp.PrivateKey, ct)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)

	s, err := sign.SignHashed(&kp.PrivateKey, msg)
	require.NoError(t, err)
	assert.True(t, sign.VerifyHashed(&kp.PublicKey, msg, s))

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 1
	assert.False(t, sign.VerifyHashed(&kp.PublicKey, tampered, s))
	assert.False(t, sign.VerifyHashed(&kp.PublicKey, msg, new(big.Int).Add(s, big.NewInt(1))))
}

func TestConcurrentKeyGeneration(t *testing.T) {
	params, err := core.CustomParams(256, 20)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	keys := make([]*rsacore.KeyPair, workers)
	errs := make([]error, workers)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = keygen.GenerateKeyPairWithParams(params)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		n := keys[i].PublicKey.N.String()
		assert.False(t, seen[n], "duplicate modulus")
		seen[n] = true

		m := big.NewInt(int64(1000 + i))
		c, err := cipher.Encrypt(&keys[i].PublicKey, m)
		require.NoError(t, err)
		got, err := cipher.Decrypt(&keys[i].PrivateKey, c)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(m))
	}
}

func TestConcurrentUseOfOneKey(t *testing.T) {
	params, err := core.CustomParams(512, 20)
	require.NoError(t, err)
	kp, err := keygen.GenerateKeyPairFromSeed(params, utils.SHA3256([]byte("shared key")))
	require.NoError(t, err)

	var wg sync.WaitGroup
	failures := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := big.NewInt(int64(i * 7919))
			c, err := cipher.Encrypt(&kp.PublicKey, m)
			if err != nil {
				failures <- err
				return
			}
			got, err := cipher.Decrypt(&kp.PrivateKey, c)
			if err != nil {
				failures <- err
				return
			}
			if got.Cmp(m) != 0 {
				failures <- errors.New("decrypted value differs")
			}
		}(i)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Error(err)
	}
}

func TestSeededKeysSurviveSerialization(t *testing.T) {
	params, err := core.CustomParams(384, 20)
	require.NoError(t, err)
	kp, err := keygen.GenerateKeyPairFromSeed(params, utils.SHA3256([]byte("serialization")))
	require.NoError(t, err)

	pk, err := keygen.DeserializePublicKey(keygen.SerializePublicKey(&kp.PublicKey))
	require.NoError(t, err)
	sk, err := keygen.DeserializePrivateKey(keygen.SerializePrivateKey(&kp.PrivateKey))
	require.NoError(t, err)

	blocks, err := codec.EncodeBlocks([]byte("persisted keys"), pk.N)
	require.NoError(t, err)
	for _, b := range blocks {
		c, err := cipher.Encrypt(pk, b)
		require.NoError(t, err)
		m, err := cipher.Decrypt(sk, c)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(b))
	}
}

func TestErrorTaxonomy(t *testing.T) {
	_, err := numtheory.ModInverse(big.NewInt(6), big.NewInt(9))
	assert.ErrorIs(t, err, rsacore.ErrNoInverse)

	kp, err := keygen.KeyPairFromPrimes(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	require.NoError(t, err)
	_, err = cipher.Encrypt(&kp.PublicKey, big.NewInt(3233))
	assert.ErrorIs(t, err, rsacore.ErrMessageTooLarge)
	_, err = sign.Sign(&kp.PrivateKey, big.NewInt(4000))
	assert.ErrorIs(t, err, rsacore.ErrMessageTooLarge)

	_, err = cipher.Encrypt(&rsacore.PublicKey{}, big.NewInt(1))
	assert.ErrorIs(t, err, rsacore.ErrInvalidKey)

	_, err = core.GetParams("RSA-1")
	assert.ErrorIs(t, err, rsacore.ErrInvalidParams)

	_, err = codec.Decode(big.NewInt(0x41))
	assert.ErrorIs(t, err, rsacore.ErrInvalidEncoding)
}
