package pgnstream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// A capped extraction over a large archive must not read the input to the
// end: the compressed-side offset stays near the scanner's read-ahead, not
// near the file size.
func TestMaxGamesBoundsReading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pgn")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var sb strings.Builder
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&sb, "[Event \"Game %d\"]\n[Result \"1-0\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 1-0\n\n", i)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		t.Fatalf("write: %v", err)
	}
	size := int64(sb.Len())
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ex, err := Open(path, Options{Tags: []string{"Event"}, MaxGames: 3})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ex.Close()

	n := 0
	for ex.Next() {
		n++
	}
	if err := ex.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if n != 3 {
		t.Fatalf("yielded %d games, want 3", n)
	}

	off, err := ex.file.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if off >= size/2 {
		t.Errorf("read %d of %d bytes for 3 games; extraction is not bounded", off, size)
	}
}
