package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names read by LoadFromEnv.
const (
	EnvLogLevel      = "RSACORE_LOG_LEVEL"
	EnvLogType       = "RSACORE_LOG_TYPE"
	EnvLogFile       = "RSACORE_LOG_FILE"
	EnvLogMaxSize    = "RSACORE_LOG_MAX_SIZE"
	EnvLogMaxBackups = "RSACORE_LOG_MAX_BACKUPS"
	EnvLogMaxAge     = "RSACORE_LOG_MAX_AGE"
)

// DefaultEnvFile is loaded by the CLI when present.
const DefaultEnvFile = ".env"

// DefaultLoggerSettings returns warning-level console logging with
// rotation limits that are valid if the type is switched to file.
func DefaultLoggerSettings() *LoggerSettings {
	return &LoggerSettings{
		LogLevel:   LogLevelWarning,
		LogType:    LogTypeConsole,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// LoadFromEnv loads the given env files, skipping any that do not exist,
// then builds LoggerSettings from the process environment on top of
// DefaultLoggerSettings. Variables already set in the environment win over
// values from the files.
func LoadFromEnv(envFiles ...string) (*LoggerSettings, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	s := DefaultLoggerSettings()
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogType); ok {
		s.LogType = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		s.FilePath = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvLogMaxSize, &s.MaxSize},
		{EnvLogMaxBackups, &s.MaxBackups},
		{EnvLogMaxAge, &s.MaxAge},
	}
	for _, it := range ints {
		v, ok := os.LookupEnv(it.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", it.name, err)
		}
		*it.dst = n
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
