// Package textio reads preset and shader text files.
//
// Files written by Windows editors often start with a UTF-8 byte order mark
// and occasionally are saved as UTF-16. Both are normalized to plain UTF-8
// before any parsing happens so line and column numbers stay meaningful.
package textio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadFile reads path and returns its contents as UTF-8 text with any byte
// order mark removed. UTF-16 input is detected by its BOM and transcoded.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	return Decode(data)
}

// Decode converts raw file bytes to UTF-8 text.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
	if err != nil {
		return "", fmt.Errorf("textio: decode: %w", err)
	}
	return string(out), nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
