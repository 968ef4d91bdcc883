package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Program image format:
// - no header or magic bytes
// - a sequence of little-endian uint16 words, loaded verbatim from address 0
// - the byte length must be even and at most 2*MemorySize

// DecodeImage converts a raw program image to words.
func DecodeImage(data []byte) ([]Word, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrMalformedImage, len(data))
	}
	if len(data)/2 > MemorySize {
		return nil, fmt.Errorf("%w: %d words exceeds memory size %d", ErrMalformedImage, len(data)/2, MemorySize)
	}
	words := make([]Word, len(data)/2)
	for i := range words {
		words[i] = Word(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return words, nil
}

// EncodeImage converts words to the raw program image format.
func EncodeImage(words []Word) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(2 * len(words))
	for _, w := range words {
		// bytes.Buffer writes never fail
		_ = binary.Write(buf, binary.LittleEndian, uint16(w))
	}
	return buf.Bytes()
}

// ReadImage reads a full program image from r.
func ReadImage(r io.Reader) ([]Word, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return DecodeImage(data)
}

// ReadImageFile reads a program image from disk.
func ReadImageFile(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	words, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
