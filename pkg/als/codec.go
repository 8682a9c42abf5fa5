package als

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// ErrDecode indicates input that is not a gzip-compressed XML document.
var ErrDecode = errors.New("decode project")

// Decompress returns the XML payload of a gzip container.
func Decompress(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: open gzip stream: %w", ErrDecode, err)
	}

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: read gzip stream: %w", ErrDecode, err)
	}

	err = zr.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: close gzip stream: %w", ErrDecode, err)
	}

	return data, nil
}

// Compress wraps an XML payload in a gzip container.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)

	_, err := zw.Write(data)
	if err != nil {
		return nil, fmt.Errorf("write gzip stream: %w", err)
	}

	err = zw.Close()
	if err != nil {
		return nil, fmt.Errorf("close gzip stream: %w", err)
	}

	return buf.Bytes(), nil
}
