package pgnstream

import (
	"compress/bzip2"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// openContainer wraps the archive file with the decompressor its extension
// calls for. The returned closer releases decoder resources only; the caller
// still owns the file handle.
func openContainer(f *os.File, path string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd"):
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case strings.HasSuffix(path, ".bz2"):
		// Historical Lichess dumps; decode only, stdlib has no compressor.
		return bzip2.NewReader(f), func() {}, nil
	default:
		return f, func() {}, nil
	}
}
