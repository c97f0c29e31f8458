// Package commands implements the rsacore-cli sub-commands.
package commands

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BackendStack21/rsacore-go/internal/config"
	"github.com/BackendStack21/rsacore-go/internal/logger"
	"github.com/spf13/cobra"
)

// MaxInputFileSize bounds every file the CLI reads.
const MaxInputFileSize = 16 * 1024 * 1024

// CommandHandler carries the state shared by all commands.
type CommandHandler struct {
	logger logger.Logger
}

// NewCommandHandler initializes a CommandHandler with a logger configured
// from the environment.
func NewCommandHandler() (*CommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return &CommandHandler{logger: loggerInstance}, nil
}

// Close releases resources held by the handler's logger, such as the
// rotating log file. Console loggers hold nothing to release.
func (h *CommandHandler) Close() error {
	if closer, ok := h.logger.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func setupLogger() (logger.Logger, error) {
	settings, err := config.LoadFromEnv(config.DefaultEnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load logger settings: %w", err)
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// readInputFile reads a file after checking its size.
func readInputFile(filename string) ([]byte, error) {
	filename = filepath.Clean(filename)
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxInputFileSize {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), MaxInputFileSize)
	}
	return os.ReadFile(filename)
}

// readMessage returns the --message flag, or the contents of --input-file.
func readMessage(cmd *cobra.Command) ([]byte, error) {
	message, _ := cmd.Flags().GetString("message")
	inputFile, _ := cmd.Flags().GetString("input-file")

	switch {
	case message != "" && inputFile != "":
		return nil, fmt.Errorf("--message and --input-file are mutually exclusive")
	case inputFile != "":
		return readInputFile(inputFile)
	case cmd.Flags().Changed("message"):
		return []byte(message), nil
	default:
		return nil, fmt.Errorf("one of --message or --input-file is required")
	}
}

// writeOutput writes data to filename with owner-only permissions, or to w
// when filename is empty.
func writeOutput(w io.Writer, data []byte, filename string) error {
	if filename == "" {
		_, err := w.Write(data)
		return err
	}

	f, err := os.OpenFile(filepath.Clean(filename), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}

	// Enforce permissions even if the file already existed.
	if err := os.Chmod(filename, 0600); err != nil {
		return fmt.Errorf("error setting file permissions: %w", err)
	}
	return nil
}

// parseBigInt parses a decimal integer, or a hexadecimal one with a 0x prefix.
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %q", s)
	}
	return n, nil
}
