// Package export writes fetched time-series payloads to disk.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fitexport/pkg/logging"
)

// Indent is the indentation used for every written document.
const Indent = "  "

// ErrEmptyPath is returned when no output path was given.
var ErrEmptyPath = errors.New("output path cannot be empty")

// Format re-indents payload with two spaces without changing any value.
func Format(payload json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", Indent); err != nil {
		return nil, fmt.Errorf("failed to format payload: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes payload to path, indented with two spaces. The file is
// written to a temporary sibling first and renamed into place, so path is
// either left untouched or holds the complete document. It returns the number
// of bytes written.
func WriteJSON(path string, payload json.RawMessage) (int, error) {
	if path == "" {
		return 0, ErrEmptyPath
	}

	data, err := Format(payload)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logging.Info("Export", "Wrote %d bytes to %s", len(data), path)
	return len(data), nil
}
