// Package codec maps byte strings to integers below an RSA modulus and back.
//
// A block is encoded as the big-endian integer of 0x01 ‖ chunk. The marker
// byte keeps leading zero bytes of the chunk from being lost.
package codec

import (
	"fmt"
	"math/big"

	rsacore "github.com/BackendStack21/rsacore-go"
	"github.com/BackendStack21/rsacore-go/utils"
)

const marker = 0x01

// MaxBlockSize returns the largest chunk length, in bytes, that Encode
// accepts for modulus n. It is 0 when n is too small to carry any data.
func MaxBlockSize(n *big.Int) int {
	if n == nil {
		return 0
	}
	size := (n.BitLen()-1)/8 - 1
	if size < 0 {
		return 0
	}
	return size
}

// Encode maps msg to an integer in [1, n).
func Encode(msg []byte, n *big.Int) (*big.Int, error) {
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 1", rsacore.ErrInvalidParams)
	}
	if max := MaxBlockSize(n); len(msg) > max {
		return nil, fmt.Errorf("%w: block of %d bytes exceeds %d for a %d-bit modulus",
			rsacore.ErrMessageTooLarge, len(msg), max, n.BitLen())
	}

	buf := make([]byte, len(msg)+1)
	buf[0] = marker
	copy(buf[1:], msg)
	return new(big.Int).SetBytes(buf), nil
}

// Decode inverts Encode.
func Decode(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() <= 0 {
		return nil, fmt.Errorf("%w: block value must be positive", rsacore.ErrInvalidEncoding)
	}
	b := v.Bytes()
	if b[0] != marker {
		return nil, fmt.Errorf("%w: missing block marker", rsacore.ErrInvalidEncoding)
	}
	return b[1:], nil
}

// Split cuts msg into chunks of at most size bytes. An empty message yields
// a single empty chunk.
func Split(msg []byte, size int) ([][]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: block size must be positive", rsacore.ErrInvalidParams)
	}
	if len(msg) == 0 {
		return [][]byte{{}}, nil
	}

	chunks := make([][]byte, 0, (len(msg)+size-1)/size)
	for len(msg) > size {
		chunks = append(chunks, msg[:size:size])
		msg = msg[size:]
	}
	return append(chunks, msg), nil
}

// EncodeBlocks splits msg into chunks that fit modulus n and encodes each.
func EncodeBlocks(msg []byte, n *big.Int) ([]*big.Int, error) {
	if err := utils.CheckLength(len(msg), utils.MaxMessageSize); err != nil {
		return nil, fmt.Errorf("%w: %v", rsacore.ErrMessageTooLarge, err)
	}
	size := MaxBlockSize(n)
	if size == 0 {
		if len(msg) > 0 {
			return nil, fmt.Errorf("%w: modulus too small to carry data", rsacore.ErrMessageTooLarge)
		}
		size = 1
	}

	chunks, err := Split(msg, size)
	if err != nil {
		return nil, err
	}

	blocks := make([]*big.Int, len(chunks))
	for i, chunk := range chunks {
		if blocks[i], err = Encode(chunk, n); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// DecodeBlocks decodes and concatenates blocks produced by EncodeBlocks.
func DecodeBlocks(blocks []*big.Int) ([]byte, error) {
	if err := utils.CheckLength(len(blocks), utils.MaxBlocks); err != nil {
		return nil, fmt.Errorf("%w: %v", rsacore.ErrInvalidEncoding, err)
	}

	var msg []byte
	for i, v := range blocks {
		chunk, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		msg = append(msg, chunk...)
	}
	if msg == nil {
		msg = []byte{}
	}
	return msg, nil
}
