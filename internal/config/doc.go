// Package config loads and validates the rsacore CLI settings.
//
// Settings come from RSACORE_* environment variables, optionally seeded
// from a .env file.
package config
