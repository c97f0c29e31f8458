package commands

import (
	"encoding/hex"
	"fmt"
	"time"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/core"
	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/BackendStack21/rsacore-go/utils"
	"github.com/spf13/cobra"
)

// GenerateKeysCmd generates a key pair and writes it as JSON.
func (h *CommandHandler) GenerateKeysCmd(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("level")
	bits, _ := cmd.Flags().GetInt("bits")
	rounds, _ := cmd.Flags().GetInt("rounds")
	seedHex, _ := cmd.Flags().GetString("seed")
	passphrase, _ := cmd.Flags().GetString("passphrase")
	emitSeed, _ := cmd.Flags().GetBool("emit-seed")
	output, _ := cmd.Flags().GetString("output")
	publicOutput, _ := cmd.Flags().GetString("public-output")
	showFactors, _ := cmd.Flags().GetBool("show-factors")

	params, err := keyParams(rsacore.SecurityLevel(level), bits, rounds)
	if err != nil {
		return err
	}

	start := time.Now()
	var kp *rsacore.KeyPair
	var factors *rsacore.PrimeFactors
	seed, err := keySeed(seedHex, passphrase, emitSeed)
	if err != nil {
		return err
	}
	if seed != nil {
		if showFactors {
			return fmt.Errorf("--show-factors cannot be combined with seeded generation")
		}
		if emitSeed {
			fmt.Fprintf(cmd.ErrOrStderr(), "seed = %s\n", hex.EncodeToString(seed))
		}
		kp, err = keygen.GenerateKeyPairFromSeed(params, seed)
		utils.Zeroize(seed)
		if err != nil {
			return fmt.Errorf("error generating key pair: %w", err)
		}
	} else {
		kp, factors, err = keygen.GenerateKeyPairWithFactors(params, utils.RandReader)
		if err != nil {
			return fmt.Errorf("error generating key pair: %w", err)
		}
	}
	h.logger.Debug("Key generation took ", time.Since(start))

	if showFactors {
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "p   = %s\n", factors.P)
		fmt.Fprintf(w, "q   = %s\n", factors.Q)
		fmt.Fprintf(w, "n   = %s\n", kp.PublicKey.N)
		fmt.Fprintf(w, "phi = %s\n", factors.Phi)
		fmt.Fprintf(w, "e   = %s\n", kp.PublicKey.E)
		fmt.Fprintf(w, "d   = %s\n", kp.PrivateKey.D)
	}

	export := newKeyExport(params.Level, kp)
	data, err := marshalExport(export)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data, output); err != nil {
		return err
	}

	if publicOutput != "" {
		pubData, err := marshalExport(export.Public())
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), pubData, publicOutput); err != nil {
			return err
		}
	}

	h.logger.Info("Generated key pair ", export.ID, " fingerprint ", export.Fingerprint)
	return nil
}

// InspectKeyCmd prints the components of a key file.
func (h *CommandHandler) InspectKeyCmd(cmd *cobra.Command, _ []string) error {
	keyFile, _ := cmd.Flags().GetString("key")

	export, err := loadKeyExport(keyFile)
	if err != nil {
		return err
	}
	pk, err := export.PublicKeyValue()
	if err != nil {
		return err
	}

	fingerprint := hex.EncodeToString(keygen.Fingerprint(pk))
	if export.Fingerprint != "" && export.Fingerprint != fingerprint {
		return fmt.Errorf("fingerprint mismatch: file says %s, key hashes to %s", export.Fingerprint, fingerprint)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "id:          %s\n", export.ID)
	fmt.Fprintf(w, "level:       %s\n", export.Level)
	fmt.Fprintf(w, "bits:        %d\n", pk.N.BitLen())
	fmt.Fprintf(w, "e:           %s\n", pk.E)
	fmt.Fprintf(w, "n:           %s\n", pk.N.Text(16))
	fmt.Fprintf(w, "fingerprint: %s\n", fingerprint)

	if export.PrivateKey != "" {
		sk, err := export.PrivateKeyValue()
		if err != nil {
			return err
		}
		if sk.N.Cmp(pk.N) != 0 {
			return fmt.Errorf("private and public key moduli differ")
		}
		fmt.Fprintln(w, "private key: present")
	} else {
		fmt.Fprintln(w, "private key: absent")
	}
	return nil
}

// keySeed picks the seed source. At most one of the three may be set; a nil
// seed means unseeded generation.
func keySeed(seedHex, passphrase string, emit bool) ([]byte, error) {
	set := 0
	for _, on := range []bool{seedHex != "", passphrase != "", emit} {
		if on {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("--seed, --passphrase and --emit-seed are mutually exclusive")
	}

	switch {
	case seedHex != "":
		seed, err := hex.DecodeString(seedHex)
		if err != nil {
			return nil, fmt.Errorf("invalid seed hex: %w", err)
		}
		return seed, nil
	case passphrase != "":
		return keygen.SeedFromPassphrase(passphrase), nil
	case emit:
		return keygen.NewSeed()
	}
	return nil, nil
}

func keyParams(level rsacore.SecurityLevel, bits, rounds int) (rsacore.Params, error) {
	if bits > 0 {
		return core.CustomParams(bits, rounds)
	}
	params, err := core.GetParams(level)
	if err != nil {
		return rsacore.Params{}, err
	}
	if rounds > 0 {
		params.Rounds = rounds
		if err := core.ValidateParams(params); err != nil {
			return rsacore.Params{}, err
		}
	}
	return params, nil
}

// InitKeyCommands registers the key management commands.
func InitKeyCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair",
		RunE:  handler.GenerateKeysCmd,
	}
	keygenCmd.Flags().StringP("level", "l", string(rsacore.RSA2048), "Security level (RSA-1024, RSA-2048, RSA-3072, RSA-4096)")
	keygenCmd.Flags().Int("bits", 0, "Custom modulus size in bits, overrides --level")
	keygenCmd.Flags().Int("rounds", 0, "Miller-Rabin rounds per prime candidate (default from level)")
	keygenCmd.Flags().String("seed", "", "Hex seed of at least 32 bytes for deterministic generation")
	keygenCmd.Flags().String("passphrase", "", "Derive the generation seed from a passphrase")
	keygenCmd.Flags().Bool("emit-seed", false, "Generate from a fresh random seed and print it to stderr")
	keygenCmd.Flags().StringP("output", "o", "", "Key pair output file (default: stdout)")
	keygenCmd.Flags().String("public-output", "", "Also write the public key alone to this file")
	keygenCmd.Flags().Bool("show-factors", false, "Print p, q, n, phi, e and d to stderr")
	rootCmd.AddCommand(keygenCmd)

	var inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Show the contents of a key file",
		RunE:  handler.InspectKeyCmd,
	}
	inspectCmd.Flags().StringP("key", "k", "", "Path to a key file")
	_ = inspectCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(inspectCmd)
}
