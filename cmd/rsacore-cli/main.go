// Package main is the entry point for rsacore-cli. It registers the key,
// cipher, signature, number theory and benchmark commands and executes the
// command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	commands "github.com/BackendStack21/rsacore-go/cmd/rsacore-cli/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(args []string) error {
	rootCmd, handler, err := newRootCmd()
	if err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	if closeErr := handler.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close logger: %w", closeErr)
	}
	return err
}

func newRootCmd() (*cobra.Command, *commands.CommandHandler, error) {
	rootCmd := &cobra.Command{
		Use:   "rsacore-cli",
		Short: "Textbook RSA command line tool",
		Long: `rsacore-cli generates textbook RSA keys and uses them to encrypt,
decrypt, sign and verify messages. It also exposes the underlying number
theory: prime generation, primality tests, modular exponentiation and
modular inverses.

Logging is configured with RSACORE_LOG_LEVEL, RSACORE_LOG_TYPE,
RSACORE_LOG_FILE, RSACORE_LOG_MAX_SIZE, RSACORE_LOG_MAX_BACKUPS and
RSACORE_LOG_MAX_AGE, optionally set from a .env file.

WARNING: textbook RSA has no padding. Do not use it to protect real data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	handler, err := initializeCommands(rootCmd)
	if err != nil {
		return nil, nil, err
	}
	return rootCmd, handler, nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) (*commands.CommandHandler, error) {
	handler, err := commands.NewCommandHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to create command handler: %w", err)
	}

	commands.InitKeyCommands(rootCmd, handler)
	commands.InitCipherCommands(rootCmd, handler)
	commands.InitSignCommands(rootCmd, handler)
	commands.InitMathCommands(rootCmd, handler)
	commands.InitBenchmarkCommands(rootCmd, handler)
	commands.InitVersionCommand(rootCmd)

	return handler, nil
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}
