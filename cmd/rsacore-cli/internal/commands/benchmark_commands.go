package commands

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/cipher"
	"github.com/BackendStack21/rsacore-go/keygen"
	"github.com/BackendStack21/rsacore-go/sign"
	"github.com/spf13/cobra"
)

const appName = "rsacore-cli"

// BenchmarkCmd times key generation, encryption and signatures.
func (h *CommandHandler) BenchmarkCmd(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("level")
	iterations, _ := cmd.Flags().GetInt("iterations")
	if iterations < 1 {
		iterations = 1
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rsacore Benchmark Results\n")
	fmt.Fprintf(w, "=========================\n")
	fmt.Fprintf(w, "Security Level: %s\n", level)
	fmt.Fprintf(w, "Iterations: %d\n\n", iterations)

	var keygenTotal time.Duration
	var kp *rsacore.KeyPair
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		kp, err = keygen.GenerateKeyPair(rsacore.SecurityLevel(level))
		keygenTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("keygen error: %w", err)
		}
	}
	fmt.Fprintf(w, "  KeyGen:   %v (avg)\n", keygenTotal/time.Duration(iterations))

	m := big.NewInt(0xC0FFEE)

	var encryptTotal time.Duration
	var c *big.Int
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		c, err = cipher.Encrypt(&kp.PublicKey, m)
		encryptTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("encrypt error: %w", err)
		}
	}
	fmt.Fprintf(w, "  Encrypt:  %v (avg)\n", encryptTotal/time.Duration(iterations))

	var decryptTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		got, err := cipher.Decrypt(&kp.PrivateKey, c)
		decryptTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("decrypt error: %w", err)
		}
		if got.Cmp(m) != 0 {
			return fmt.Errorf("decrypt mismatch")
		}
	}
	fmt.Fprintf(w, "  Decrypt:  %v (avg)\n", decryptTotal/time.Duration(iterations))

	testMessage := bytes.Repeat([]byte("Hello, RSA!"), 10)

	var signTotal time.Duration
	var s *big.Int
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		s, err = sign.SignHashed(&kp.PrivateKey, testMessage)
		signTotal += time.Since(start)
		if err != nil {
			return fmt.Errorf("sign error: %w", err)
		}
	}
	fmt.Fprintf(w, "  Sign:     %v (avg)\n", signTotal/time.Duration(iterations))

	var verifyTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		valid := sign.VerifyHashed(&kp.PublicKey, testMessage, s)
		verifyTotal += time.Since(start)
		if !valid {
			return fmt.Errorf("verify failed")
		}
	}
	fmt.Fprintf(w, "  Verify:   %v (avg)\n", verifyTotal/time.Duration(iterations))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Benchmark complete!")
	return nil
}

// InitBenchmarkCommands registers the benchmark command.
func InitBenchmarkCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var benchmarkCmd = &cobra.Command{
		Use:   "benchmark",
		Short: "Run performance benchmarks",
		Args:  cobra.NoArgs,
		RunE:  handler.BenchmarkCmd,
	}
	benchmarkCmd.Flags().StringP("level", "l", string(rsacore.RSA1024), "Security level")
	benchmarkCmd.Flags().IntP("iterations", "n", 10, "Iterations per operation")
	rootCmd.AddCommand(benchmarkCmd)
}

// InitVersionCommand registers the version command.
func InitVersionCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, rsacore.Version)
		},
	})
}
