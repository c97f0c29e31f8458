package commands

import (
	"errors"
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/numtheory"
	"github.com/BackendStack21/rsacore-go/primality"
	"github.com/BackendStack21/rsacore-go/utils"
	"github.com/spf13/cobra"
)

// GeneratePrimeCmd prints a random probable prime.
func (h *CommandHandler) GeneratePrimeCmd(cmd *cobra.Command, _ []string) error {
	bits, _ := cmd.Flags().GetInt("bits")
	rounds, _ := cmd.Flags().GetInt("rounds")

	p, err := primality.GeneratePrime(utils.RandReader, bits, rounds, 0)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	h.logger.Info("Generated ", bits, "-bit prime")
	return nil
}

// TestPrimeCmd runs Miller-Rabin on each argument.
func (h *CommandHandler) TestPrimeCmd(cmd *cobra.Command, args []string) error {
	rounds, _ := cmd.Flags().GetInt("rounds")

	for _, arg := range args {
		n, err := parseBigInt(arg)
		if err != nil {
			return err
		}
		ok, err := primality.ProbablyPrime(utils.RandReader, n, rounds)
		if err != nil {
			return err
		}
		verdict := "composite"
		if ok {
			verdict = "probably prime"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", n, verdict)
	}
	return nil
}

// ModPowCmd prints base^exp mod m.
func (h *CommandHandler) ModPowCmd(cmd *cobra.Command, args []string) error {
	base, exp, m, err := parseThree(args)
	if err != nil {
		return err
	}
	if m.Sign() <= 0 {
		return fmt.Errorf("%w: modulus must be positive", rsacore.ErrInvalidParams)
	}
	if exp.Sign() < 0 {
		return fmt.Errorf("%w: exponent must not be negative", rsacore.ErrInvalidParams)
	}
	fmt.Fprintln(cmd.OutOrStdout(), numtheory.ModPow(base, exp, m))
	return nil
}

// InverseCmd prints the inverse of a modulo m.
func (h *CommandHandler) InverseCmd(cmd *cobra.Command, args []string) error {
	a, err := parseBigInt(args[0])
	if err != nil {
		return err
	}
	m, err := parseBigInt(args[1])
	if err != nil {
		return err
	}

	inv, err := numtheory.ModInverse(a, m)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), inv)
	return nil
}

// GCDCmd prints gcd(a, b) and the Bezout coefficients.
func (h *CommandHandler) GCDCmd(cmd *cobra.Command, args []string) error {
	a, err := parseBigInt(args[0])
	if err != nil {
		return err
	}
	b, err := parseBigInt(args[1])
	if err != nil {
		return err
	}

	g, x, y := numtheory.ExtendedGCD(a, b)
	fmt.Fprintf(cmd.OutOrStdout(), "gcd = %s\nx   = %s\ny   = %s\n", g, x, y)
	return nil
}

func parseThree(args []string) (a, b, c *big.Int, err error) {
	if len(args) != 3 {
		return nil, nil, nil, errors.New("expected three integers")
	}
	if a, err = parseBigInt(args[0]); err != nil {
		return
	}
	if b, err = parseBigInt(args[1]); err != nil {
		return
	}
	c, err = parseBigInt(args[2])
	return
}

// InitMathCommands registers the number theory commands.
func InitMathCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var primeCmd = &cobra.Command{
		Use:   "prime",
		Short: "Prime generation and primality testing",
	}

	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a random probable prime",
		Args:  cobra.NoArgs,
		RunE:  handler.GeneratePrimeCmd,
	}
	generateCmd.Flags().IntP("bits", "b", 512, "Prime size in bits")
	generateCmd.Flags().IntP("rounds", "r", primality.DefaultRounds, "Miller-Rabin rounds")
	primeCmd.AddCommand(generateCmd)

	var testCmd = &cobra.Command{
		Use:   "test <n>...",
		Short: "Test integers for primality with Miller-Rabin",
		Args:  cobra.MinimumNArgs(1),
		RunE:  handler.TestPrimeCmd,
	}
	testCmd.Flags().IntP("rounds", "r", primality.DefaultRounds, "Miller-Rabin rounds")
	primeCmd.AddCommand(testCmd)

	rootCmd.AddCommand(primeCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "modpow <base> <exp> <mod>",
		Short: "Compute base^exp mod mod",
		Args:  cobra.ExactArgs(3),
		RunE:  handler.ModPowCmd,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "inverse <a> <m>",
		Short: "Compute the inverse of a modulo m",
		Args:  cobra.ExactArgs(2),
		RunE:  handler.InverseCmd,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "gcd <a> <b>",
		Short: "Compute gcd(a, b) with the extended Euclidean algorithm",
		Args:  cobra.ExactArgs(2),
		RunE:  handler.GCDCmd,
	})
}
