// util/resources.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Unfortunately, unlike io.ReadCloser, the zstd Decoder's Close() method
// doesn't return an error, so we need to make our own custom ReadCloser
// interface.
type ResourceReadCloser interface {
	io.Reader
	Close()
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() {}

// OpenResource provides a ResourceReadCloser to access the specified
// catalog file; if it's zstd compressed, the Reader will handle
// decompression transparently.
func OpenResource(path string) (ResourceReadCloser, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	br := bytesReadCloser{bytes.NewReader(f)}

	if filepath.Ext(path) == ".zst" {
		return zstd.NewReader(br, zstd.WithDecoderConcurrency(0))
	}

	return br, nil
}

// ReadResource returns the full (decompressed) contents of the file.
func ReadResource(path string) ([]byte, error) {
	r, err := OpenResource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// WriteResource writes b to path, compressing it with zstd if the path
// has a .zst extension.
func WriteResource(path string, b []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) != ".zst" {
		_, err = f.Write(b)
		return err
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if _, err := zw.Write(b); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}
