package commands

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BackendStack21/rsacore-go/cipher"
	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/spf13/cobra"
)

// EncryptCmd encrypts a message with a public key.
func (h *CommandHandler) EncryptCmd(cmd *cobra.Command, _ []string) error {
	keyFile, _ := cmd.Flags().GetString("public-key")
	output, _ := cmd.Flags().GetString("output")

	export, err := loadKeyExport(keyFile)
	if err != nil {
		return err
	}
	pk, err := export.PublicKeyValue()
	if err != nil {
		return err
	}
	msg, err := readMessage(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	blocks, err := cipher.EncryptMessage(pk, msg)
	if err != nil {
		return fmt.Errorf("error encrypting: %w", err)
	}
	h.logger.Debug("Encryption took ", time.Since(start))

	ct := CiphertextExport{
		KeyFingerprint: hex.EncodeToString(keygen.Fingerprint(pk)),
		Blocks:         make([]string, len(blocks)),
	}
	for i, b := range blocks {
		ct.Blocks[i] = encodeInt(b)
	}

	data, err := marshalExport(ct)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data, output); err != nil {
		return err
	}

	h.logger.Info("Encrypted ", len(msg), " bytes into ", len(blocks), " blocks")
	return nil
}

// DecryptCmd decrypts a ciphertext file with a private key.
func (h *CommandHandler) DecryptCmd(cmd *cobra.Command, _ []string) error {
	keyFile, _ := cmd.Flags().GetString("private-key")
	ctFile, _ := cmd.Flags().GetString("ciphertext")
	output, _ := cmd.Flags().GetString("output")

	export, err := loadKeyExport(keyFile)
	if err != nil {
		return err
	}
	sk, err := export.PrivateKeyValue()
	if err != nil {
		return err
	}

	ct, blocks, err := loadCiphertext(ctFile)
	if err != nil {
		return err
	}
	if export.Fingerprint != "" && ct.KeyFingerprint != "" && ct.KeyFingerprint != export.Fingerprint {
		h.logger.Warn("Ciphertext was produced for key ", ct.KeyFingerprint, ", decrypting with ", export.Fingerprint)
	}

	start := time.Now()
	msg, err := cipher.DecryptMessage(sk, blocks)
	if err != nil {
		return fmt.Errorf("error decrypting: %w", err)
	}
	h.logger.Debug("Decryption took ", time.Since(start))

	if err := writeOutput(cmd.OutOrStdout(), msg, output); err != nil {
		return err
	}

	h.logger.Info("Decrypted ", len(blocks), " blocks")
	return nil
}

// InitCipherCommands registers the encrypt and decrypt commands.
func InitCipherCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var encryptCmd = &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message with a public key",
		RunE:  handler.EncryptCmd,
	}
	encryptCmd.Flags().StringP("public-key", "k", "", "Path to a key file holding the public key")
	encryptCmd.Flags().StringP("message", "m", "", "Message to encrypt")
	encryptCmd.Flags().StringP("input-file", "i", "", "File to encrypt")
	encryptCmd.Flags().StringP("output", "o", "", "Ciphertext output file (default: stdout)")
	_ = encryptCmd.MarkFlagRequired("public-key")
	rootCmd.AddCommand(encryptCmd)

	var decryptCmd = &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a ciphertext file with a private key",
		RunE:  handler.DecryptCmd,
	}
	decryptCmd.Flags().StringP("private-key", "k", "", "Path to a key file holding the private key")
	decryptCmd.Flags().StringP("ciphertext", "c", "", "Path to the ciphertext file")
	decryptCmd.Flags().StringP("output", "o", "", "Plaintext output file (default: stdout)")
	_ = decryptCmd.MarkFlagRequired("private-key")
	_ = decryptCmd.MarkFlagRequired("ciphertext")
	rootCmd.AddCommand(decryptCmd)
}
