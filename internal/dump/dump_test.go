package dump_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/dump"
)

type payload struct {
	Players   []string `json:"players"`
	Generated string   `json:"generated"`
}

func TestRoundTrip(t *testing.T) {
	in := payload{Players: []string{"alice", "bob"}, Generated: "2026-08-30"}

	for _, name := range []string{"out.json", "out.json.gz", "out.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := dump.Save(path, in); err != nil {
				t.Fatalf("Save: %v", err)
			}
			var out payload
			if err := dump.Load(path, &out); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		})
	}
}

func TestZstOutputIsCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json.zst")
	big := payload{Generated: "x"}
	for i := 0; i < 5000; i++ {
		big.Players = append(big.Players, "player_with_a_rather_long_name")
	}
	if err := dump.Save(path, big); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw) > 20000 {
		t.Errorf("compressed size = %d bytes, looks uncompressed", len(raw))
	}
	if !bytes.HasPrefix(raw, []byte{0x28, 0xb5, 0x2f, 0xfd}) {
		t.Error("output missing the zstd frame magic")
	}
}

func TestLoadBz2(t *testing.T) {
	var out payload
	if err := dump.Load(filepath.Join("testdata", "players.json.bz2"), &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"magnus", "hikaru"}; !reflect.DeepEqual(out.Players, want) {
		t.Errorf("players = %v, want %v", out.Players, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var out payload
	if err := dump.Load(filepath.Join(t.TempDir(), "nope.json.zst"), &out); err == nil {
		t.Fatal("expected error for missing file")
	}
}
