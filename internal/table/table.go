// Package table reads and writes tabular files (XLSX and CSV) as rows of
// string cells, dispatching on the file extension.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadError reports a failure loading the input table. It is fatal for the
// run.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("table: read %s: %v", e.Path, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failure writing the output table. It is fatal for the
// run.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("table: write %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Read loads all rows of the tabular file at path. Rows may have differing
// widths; no header interpretation happens at this layer.
func Read(path string) ([][]string, error) {
	var rows [][]string
	var err error

	switch ext(path) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		err = eris.Errorf("unsupported file extension %q", ext(path))
	}
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return rows, nil
}

// Write stores rows as the tabular file at path, creating parent directories
// as needed.
func Write(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Path: path, Err: eris.Wrap(err, "create output directory")}
		}
	}

	var err error
	switch ext(path) {
	case ".xlsx", ".xlsm":
		err = writeXLSX(path, rows)
	case ".csv":
		err = writeCSV(path, rows)
	default:
		err = eris.Errorf("unsupported file extension %q", ext(path))
	}
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
