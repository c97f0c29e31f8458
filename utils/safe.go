// Package utils provides utility functions for rsacore.
// This file contains bounds helpers that keep deserialization from
// allocating attacker-chosen amounts of memory.

package utils

import (
	"errors"
	"math"
)

const (
	// MaxIntegerBytes is the largest serialized integer accepted (16384 bits).
	MaxIntegerBytes = 2048

	// MaxMessageSize is the maximum message size in bytes accepted by the block codec.
	MaxMessageSize = 1 << 20 // 1MB

	// MaxBlocks is the maximum number of ciphertext blocks accepted in one message.
	MaxBlocks = 1 << 16
)

var (
	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// SafeReadLength reads a uint32 length from data at offset, validates it, and returns the value.
// Returns error if not enough bytes available or length exceeds maxAllowed.
func SafeReadLength(data []byte, offset, maxAllowed int) (length int, newOffset int, err error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, offset, errors.New("truncated length field")
	}
	raw := uint32(data[offset]) | uint32(data[offset+1])<<8 | uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
	if raw > uint32(maxAllowed) || (maxAllowed > math.MaxInt32 && int(raw) < 0) {
		return 0, offset, ErrExceedsLimit
	}
	return int(raw), offset + 4, nil
}

// ValidateSliceAccess checks that accessing data[offset:offset+size] is safe.
func ValidateSliceAccess(data []byte, offset, size int) error {
	if offset < 0 || size < 0 {
		return ErrInvalidLength
	}
	if offset+size < offset {
		return ErrExceedsLimit
	}
	if offset+size > len(data) {
		return errors.New("slice access out of bounds")
	}
	return nil
}
