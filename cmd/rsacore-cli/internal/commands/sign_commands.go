package commands

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/BackendStack21/rsacore-go/sign"
	"github.com/spf13/cobra"
)

// ErrSignatureInvalid is returned by the verify command for a bad signature.
var ErrSignatureInvalid = errors.New("signature is invalid")

// SignCmd signs the SHA3-256 digest of a message.
func (h *CommandHandler) SignCmd(cmd *cobra.Command, _ []string) error {
	keyFile, _ := cmd.Flags().GetString("private-key")
	output, _ := cmd.Flags().GetString("output")

	export, err := loadKeyExport(keyFile)
	if err != nil {
		return err
	}
	sk, err := export.PrivateKeyValue()
	if err != nil {
		return err
	}
	msg, err := readMessage(cmd)
	if err != nil {
		return err
	}

	s, err := sign.SignHashed(sk, msg)
	if err != nil {
		return fmt.Errorf("error signing: %w", err)
	}

	data, err := marshalExport(SignatureExport{
		KeyFingerprint: export.Fingerprint,
		Algorithm:      SignatureAlgorithm,
		Signature:      encodeInt(s),
	})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data, output); err != nil {
		return err
	}

	h.logger.Info("Signed ", len(msg), " bytes with key ", export.ID)
	return nil
}

// VerifyCmd checks a signature produced by SignCmd.
func (h *CommandHandler) VerifyCmd(cmd *cobra.Command, _ []string) error {
	keyFile, _ := cmd.Flags().GetString("public-key")
	sigFile, _ := cmd.Flags().GetString("signature")

	export, err := loadKeyExport(keyFile)
	if err != nil {
		return err
	}
	pk, err := export.PublicKeyValue()
	if err != nil {
		return err
	}
	sigExport, s, err := loadSignature(sigFile)
	if err != nil {
		return err
	}
	msg, err := readMessage(cmd)
	if err != nil {
		return err
	}

	fingerprint := hex.EncodeToString(keygen.Fingerprint(pk))
	if sigExport.KeyFingerprint != "" && sigExport.KeyFingerprint != fingerprint {
		h.logger.Warn("Signature names key ", sigExport.KeyFingerprint, ", verifying with ", fingerprint)
	}

	if !sign.VerifyHashed(pk, msg, s) {
		fmt.Fprintln(cmd.OutOrStdout(), "invalid")
		return ErrSignatureInvalid
	}
	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}

// InitSignCommands registers the sign and verify commands.
func InitSignCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with a private key",
		RunE:  handler.SignCmd,
	}
	signCmd.Flags().StringP("private-key", "k", "", "Path to a key file holding the private key")
	signCmd.Flags().StringP("message", "m", "", "Message to sign")
	signCmd.Flags().StringP("input-file", "i", "", "File to sign")
	signCmd.Flags().StringP("output", "o", "", "Signature output file (default: stdout)")
	_ = signCmd.MarkFlagRequired("private-key")
	rootCmd.AddCommand(signCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a message signature with a public key",
		RunE:  handler.VerifyCmd,
	}
	verifyCmd.Flags().StringP("public-key", "k", "", "Path to a key file holding the public key")
	verifyCmd.Flags().StringP("message", "m", "", "Signed message")
	verifyCmd.Flags().StringP("input-file", "i", "", "Signed file")
	verifyCmd.Flags().StringP("signature", "s", "", "Path to the signature file")
	_ = verifyCmd.MarkFlagRequired("public-key")
	_ = verifyCmd.MarkFlagRequired("signature")
	rootCmd.AddCommand(verifyCmd)
}
