// Package dump persists JSON-serializable values in compressed files,
// choosing the codec by file extension.
package dump

import (
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Save marshals v and writes it to path. ".zst"/".zstd" and ".gz" select the
// codec; any other extension writes plain JSON. A partially written file is
// removed on failure.
func Save(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = encodeTo(f, path, v)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("dump %s: %w", path, err)
	}
	return nil
}

func encodeTo(f *os.File, path string, v any) error {
	switch {
	case strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd"):
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(enc).Encode(v); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	case strings.HasSuffix(path, ".gz"):
		zw := gzip.NewWriter(f)
		if err := json.NewEncoder(zw).Encode(v); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		return json.NewEncoder(f).Encode(v)
	}
}

// Load reads the file at path into v, decompressing by extension. ".bz2" is
// supported read-only for files produced by older tooling.
func Load(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader
	switch {
	case strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd"):
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(path, ".bz2"):
		r = bzip2.NewReader(f)
	default:
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
