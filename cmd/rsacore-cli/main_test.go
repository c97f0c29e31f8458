package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	commands "github.com/BackendStack21/rsacore-go/cmd/rsacore-cli/internal/commands"
	"github.com/BackendStack21/rsacore-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes rsacore-cli in-process and captures its output streams.
func runCLI(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	rootCmd, handler, err := newRootCmd()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, handler.Close()) })

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// generateKeys writes a 512-bit key pair and its public half into dir.
func generateKeys(t *testing.T, dir string) (keyFile, pubFile string) {
	t.Helper()
	keyFile = filepath.Join(dir, "key.json")
	pubFile = filepath.Join(dir, "pub.json")
	_, _, err := runCLI(t, "keygen", "--bits", "512", "--rounds", "20", "-o", keyFile, "--public-output", pubFile)
	require.NoError(t, err)
	return keyFile, pubFile
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rsacore-cli version")
}

func TestKeygen_Files(t *testing.T) {
	dir := t.TempDir()
	keyFile, pubFile := generateKeys(t, dir)

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	var kp, pub commands.KeyExport
	data, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &kp))
	data, err = os.ReadFile(pubFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &pub))

	assert.Equal(t, "RSA-CUSTOM", kp.Level)
	assert.Contains(t, []int{511, 512}, kp.Bits)
	assert.Len(t, kp.ID, 36)
	assert.Len(t, kp.Fingerprint, 64)
	assert.NotEmpty(t, kp.PrivateKey)
	assert.Empty(t, pub.PrivateKey)
	assert.Equal(t, kp.PublicKey, pub.PublicKey)
	assert.Equal(t, kp.ID, pub.ID)
}

func TestKeygen_Seeded(t *testing.T) {
	seed := strings.Repeat("0123456789abcdef", 4)
	out1, _, err := runCLI(t, "keygen", "--bits", "256", "--seed", seed)
	require.NoError(t, err)
	out2, _, err := runCLI(t, "keygen", "--bits", "256", "--seed", seed)
	require.NoError(t, err)

	var kp1, kp2 commands.KeyExport
	require.NoError(t, json.Unmarshal([]byte(out1), &kp1))
	require.NoError(t, json.Unmarshal([]byte(out2), &kp2))
	assert.Equal(t, kp1.PublicKey, kp2.PublicKey)
	assert.Equal(t, kp1.PrivateKey, kp2.PrivateKey)
	assert.NotEqual(t, kp1.ID, kp2.ID)

	_, _, err = runCLI(t, "keygen", "--bits", "256", "--seed", "zz")
	assert.Error(t, err)
	_, _, err = runCLI(t, "keygen", "--bits", "256", "--seed", seed, "--show-factors")
	assert.Error(t, err)
}

func TestKeygen_PassphraseAndEmitSeed(t *testing.T) {
	out1, _, err := runCLI(t, "keygen", "--bits", "256", "--passphrase", "open sesame")
	require.NoError(t, err)
	out2, _, err := runCLI(t, "keygen", "--bits", "256", "--passphrase", "open sesame")
	require.NoError(t, err)
	var kp1, kp2 commands.KeyExport
	require.NoError(t, json.Unmarshal([]byte(out1), &kp1))
	require.NoError(t, json.Unmarshal([]byte(out2), &kp2))
	assert.Equal(t, kp1.PublicKey, kp2.PublicKey)

	out3, stderr, err := runCLI(t, "keygen", "--bits", "256", "--emit-seed")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stderr, "seed = "), "stderr: %q", stderr)
	seed := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(stderr, "\n", 2)[0], "seed = "))

	out4, _, err := runCLI(t, "keygen", "--bits", "256", "--seed", seed)
	require.NoError(t, err)
	var kp3, kp4 commands.KeyExport
	require.NoError(t, json.Unmarshal([]byte(out3), &kp3))
	require.NoError(t, json.Unmarshal([]byte(out4), &kp4))
	assert.Equal(t, kp3.PublicKey, kp4.PublicKey, "emitted seed must reproduce the key")

	_, _, err = runCLI(t, "keygen", "--bits", "256", "--passphrase", "x", "--emit-seed")
	assert.Error(t, err)
}

func TestKeygen_ShowFactors(t *testing.T) {
	_, stderr, err := runCLI(t, "keygen", "--bits", "64", "--show-factors")
	require.NoError(t, err)
	for _, label := range []string{"p   =", "q   =", "n   =", "phi =", "e   =", "d   ="} {
		assert.Contains(t, stderr, label)
	}
}

func TestKeygen_InvalidParams(t *testing.T) {
	_, _, err := runCLI(t, "keygen", "--level", "RSA-999")
	assert.Error(t, err)
	_, _, err = runCLI(t, "keygen", "--bits", "8")
	assert.Error(t, err)
	_, _, err = runCLI(t, "keygen", "--level", "RSA-1024", "--rounds", "1000")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	keyFile, pubFile := generateKeys(t, dir)

	stdout, _, err := runCLI(t, "inspect", "--key", keyFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "e:           65537")
	assert.Contains(t, stdout, "private key: present")

	stdout, _, err = runCLI(t, "inspect", "-k", pubFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "private key: absent")

	// Tampered fingerprint.
	var exp commands.KeyExport
	data, _ := os.ReadFile(pubFile)
	require.NoError(t, json.Unmarshal(data, &exp))
	exp.Fingerprint = strings.Repeat("00", 32)
	data, _ = json.Marshal(exp)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, data, 0600))
	_, _, err = runCLI(t, "inspect", "--key", bad)
	assert.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	dir := t.TempDir()
	keyFile, pubFile := generateKeys(t, dir)
	ctFile := filepath.Join(dir, "ct.json")

	message := "Hello, RSA! Привет, мир! " + strings.Repeat("long ", 40)
	_, _, err := runCLI(t, "encrypt", "--public-key", pubFile, "--message", message, "-o", ctFile)
	require.NoError(t, err)

	var ct commands.CiphertextExport
	data, err := os.ReadFile(ctFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &ct))
	assert.Greater(t, len(ct.Blocks), 1)

	stdout, _, err := runCLI(t, "decrypt", "--private-key", keyFile, "--ciphertext", ctFile)
	require.NoError(t, err)
	assert.Equal(t, message, stdout)

	// Decrypting needs the private half.
	_, _, err = runCLI(t, "decrypt", "--private-key", pubFile, "--ciphertext", ctFile)
	assert.Error(t, err)
}

func TestEncrypt_InputFile(t *testing.T) {
	dir := t.TempDir()
	keyFile, pubFile := generateKeys(t, dir)

	plain := filepath.Join(dir, "plain.bin")
	payload := []byte{0, 0, 1, 2, 3, 0xff, 0}
	require.NoError(t, os.WriteFile(plain, payload, 0600))

	ctFile := filepath.Join(dir, "ct.json")
	outFile := filepath.Join(dir, "out.bin")
	_, _, err := runCLI(t, "encrypt", "-k", pubFile, "-i", plain, "-o", ctFile)
	require.NoError(t, err)
	_, _, err = runCLI(t, "decrypt", "-k", keyFile, "-c", ctFile, "-o", outFile)
	require.NoError(t, err)

	got, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestEncrypt_MessageFlags(t *testing.T) {
	dir := t.TempDir()
	_, pubFile := generateKeys(t, dir)

	_, _, err := runCLI(t, "encrypt", "-k", pubFile)
	assert.Error(t, err, "no message")
	_, _, err = runCLI(t, "encrypt", "-k", pubFile, "-m", "x", "-i", pubFile)
	assert.Error(t, err, "both message sources")
	_, _, err = runCLI(t, "encrypt", "-k", filepath.Join(dir, "missing.json"), "-m", "x")
	assert.Error(t, err, "missing key file")
}

func TestSignVerify(t *testing.T) {
	dir := t.TempDir()
	keyFile, pubFile := generateKeys(t, dir)
	sigFile := filepath.Join(dir, "sig.json")

	_, _, err := runCLI(t, "sign", "--private-key", keyFile, "--message", "Document to sign", "-o", sigFile)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "verify", "--public-key", pubFile, "--message", "Document to sign", "--signature", sigFile)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", stdout)

	stdout, _, err = runCLI(t, "verify", "--public-key", pubFile, "--message", "Document to sign!", "--signature", sigFile)
	assert.ErrorIs(t, err, commands.ErrSignatureInvalid)
	assert.Equal(t, "invalid\n", stdout)

	// A different key rejects the signature.
	otherDir := t.TempDir()
	_, otherPub := generateKeys(t, otherDir)
	_, _, err = runCLI(t, "verify", "-k", otherPub, "-m", "Document to sign", "-s", sigFile)
	assert.ErrorIs(t, err, commands.ErrSignatureInvalid)
}

func TestSign_SmallModulus(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "small.json")
	_, _, err := runCLI(t, "keygen", "--bits", "128", "-o", keyFile)
	require.NoError(t, err)

	_, _, err = runCLI(t, "sign", "-k", keyFile, "-m", "x")
	assert.Error(t, err)
}

func TestPrimeCommands(t *testing.T) {
	stdout, _, err := runCLI(t, "prime", "generate", "--bits", "64")
	require.NoError(t, err)
	p, err := parseDecimal(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, 64, p.BitLen())
	assert.True(t, p.ProbablyPrime(20))

	stdout, _, err = runCLI(t, "prime", "test", "7919", "561", "0x61")
	require.NoError(t, err)
	assert.Contains(t, stdout, "7919: probably prime")
	assert.Contains(t, stdout, "561: composite")
	assert.Contains(t, stdout, "97: probably prime")

	_, _, err = runCLI(t, "prime", "test", "abc")
	assert.Error(t, err)
	_, _, err = runCLI(t, "prime", "generate", "--bits", "1")
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestCommands_UseRandReader(t *testing.T) {
	orig := utils.RandReader
	defer func() { utils.RandReader = orig }()

	// The same deterministic stream must give the same prime.
	seed := utils.SHA3256([]byte("cli entropy"))
	utils.RandReader = utils.NewShake256Reader("cli", seed)
	first, _, err := runCLI(t, "prime", "generate", "--bits", "64")
	require.NoError(t, err)
	utils.RandReader = utils.NewShake256Reader("cli", seed)
	second, _, err := runCLI(t, "prime", "generate", "--bits", "64")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	utils.RandReader = failingReader{}
	_, _, err = runCLI(t, "prime", "generate", "--bits", "64")
	assert.Error(t, err)
	_, _, err = runCLI(t, "prime", "test", "7919")
	assert.Error(t, err)
	_, _, err = runCLI(t, "keygen", "--bits", "64")
	assert.Error(t, err)
	_, _, err = runCLI(t, "keygen", "--bits", "64", "--emit-seed")
	assert.Error(t, err)
}

func TestModPowInverseGCD(t *testing.T) {
	stdout, _, err := runCLI(t, "modpow", "65", "17", "3233")
	require.NoError(t, err)
	assert.Equal(t, "2790\n", stdout)

	stdout, _, err = runCLI(t, "inverse", "17", "3120")
	require.NoError(t, err)
	assert.Equal(t, "2753\n", stdout)

	stdout, _, err = runCLI(t, "gcd", "240", "46")
	require.NoError(t, err)
	assert.Equal(t, "gcd = 2\nx   = -9\ny   = 47\n", stdout)

	_, _, err = runCLI(t, "modpow", "2", "3", "0")
	assert.Error(t, err)
	_, _, err = runCLI(t, "modpow", "2", "-3", "7")
	assert.Error(t, err)
	_, _, err = runCLI(t, "inverse", "6", "9")
	assert.Error(t, err)
	_, _, err = runCLI(t, "modpow", "1", "2")
	assert.Error(t, err)
}

func TestBenchmark(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmark command in short mode")
	}
	stdout, _, err := runCLI(t, "benchmark", "--level", "RSA-1024", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "KeyGen:")
	assert.Contains(t, stdout, "Verify:")
	assert.Contains(t, stdout, "Benchmark complete!")
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Error(t, run([]string{"frobnicate"}))
}

func TestRun_ClosesHandler(t *testing.T) {
	assert.NoError(t, run([]string{"version"}))
}

func parseDecimal(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", s)
	}
	return n, nil
}
