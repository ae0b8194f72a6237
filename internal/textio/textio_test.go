package textio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeStripsUTF8BOM(t *testing.T) {
	got, err := Decode([]byte("\xEF\xBB\xBFshaders = 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "shaders = 1\n" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	// "a=1" in UTF-16LE with BOM.
	in := []byte{0xFF, 0xFE, 'a', 0, '=', 0, '1', 0}
	got, err := Decode(in)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a=1" {
		t.Errorf("Decode() = %q, want %q", got, "a=1")
	}
}

func TestDecodePlain(t *testing.T) {
	got, err := Decode([]byte("plain"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "plain" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestReadFileAndExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.slangp")
	if Exists(p) {
		t.Fatal("Exists() = true before write")
	}
	if err := os.WriteFile(p, []byte("\xEF\xBB\xBFk = v"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !Exists(p) {
		t.Fatal("Exists() = false after write")
	}
	if Exists(dir) {
		t.Error("Exists(dir) = true, want false for directories")
	}
	got, err := ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "k = v" {
		t.Errorf("ReadFile() = %q", got)
	}
}
