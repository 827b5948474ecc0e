package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ooxml-tools/ooxml-validator/pkg/parser"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/afero"
)

// Supported log file extensions
const (
	ExtCSV  = ".csv"
	ExtJSON = ".json"
)

// maxCollisions bounds the numeric suffixes tried for a taken log file name
const maxCollisions = 1000

// timestampLayout is fixed width so timestamped names sort chronologically
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrInvalidExportPath means the output file path isn't absolute
	ErrInvalidExportPath = errors.New("output file path must be an absolute path")

	// ErrNothingToExport means Export was called without errors
	ErrNothingToExport = errors.New("no validation errors to export")
)

// FileWriteError is returned when the log file can't be written
type FileWriteError struct {
	Path  string
	Cause error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("failed to write log file %s: %v", e.Path, e.Cause)
}

func (e *FileWriteError) Unwrap() error {
	return e.Cause
}

// Exporter writes validation errors to CSV or JSON log files
type Exporter struct {
	fs        afero.Fs
	overwrite bool
	now       func() time.Time
}

// NewExporter creates an Exporter. Unless overwrite is set every export gets
// a timestamped file name so earlier logs are kept.
func NewExporter(fs afero.Fs, overwrite bool) *Exporter {
	return &Exporter{
		fs:        fs,
		overwrite: overwrite,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for timestamps
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes errs to requestedPath and returns the path actually written
func (e *Exporter) Export(errs []parser.ValidationError, requestedPath string) (string, error) {
	log := util.GetLogger()

	if len(errs) == 0 {
		return "", ErrNothingToExport
	}

	path, err := NormalizePath(requestedPath)
	if err != nil {
		return "", err
	}

	if !e.overwrite {
		unique, err := e.uniquePath(path)
		if err != nil {
			return "", &FileWriteError{Path: path, Cause: err}
		}
		path = unique
	}

	var data []byte
	switch filepath.Ext(path) {
	case ExtJSON:
		data, err = EncodeJSON(errs)
	default:
		data, err = EncodeCSV(errs)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode validation errors: %w", err)
	}

	if err := WriteFileAtomic(e.fs, path, data); err != nil {
		return "", &FileWriteError{Path: path, Cause: err}
	}

	log.Info("Validation errors logged", "file", path, "count", len(errs))
	return path, nil
}

// NormalizePath cleans requested, forces a .csv extension unless it already
// ends in .csv or .json, and requires the result to be absolute
func NormalizePath(requested string) (string, error) {
	path := filepath.Clean(requested)

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV, ExtJSON:
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + strings.ToLower(ext)
	default:
		path += ExtCSV
	}

	if !filepath.IsAbs(path) {
		return path, fmt.Errorf("%w: %s", ErrInvalidExportPath, path)
	}

	return path, nil
}

// Timestamp formats t for use in a file name: sortable, with no colons
func Timestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(timestampLayout), ":", "_")
}

// TimestampedPath inserts _<timestamp> before the extension of path
func TimestampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(path, ext), Timestamp(t), ext)
}

// uniquePath returns a timestamped path that doesn't exist yet
func (e *Exporter) uniquePath(path string) (string, error) {
	stamped := TimestampedPath(path, e.now())
	taken, err := e.exists(stamped)
	if err != nil || !taken {
		return stamped, err
	}

	ext := filepath.Ext(stamped)
	base := strings.TrimSuffix(stamped, ext)
	for i := 1; i <= maxCollisions; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		taken, err := e.exists(candidate)
		if err != nil || !taken {
			return candidate, err
		}
	}
	return "", fmt.Errorf("no free log file name after %d attempts: %s", maxCollisions, stamped)
}

// exists reports whether path is taken. Stat failures other than a missing
// file, such as a parent that is a regular file, are returned as errors.
func (e *Exporter) exists(path string) (bool, error) {
	_, err := e.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// EncodeJSON renders errs as a pretty-printed JSON array
func EncodeJSON(errs []parser.ValidationError) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(errs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeCSV renders errs as CSV with a header row of field names. Every cell
// holds the JSON encoding of its value, so absent values read back as null.
func EncodeCSV(errs []parser.ValidationError) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(parser.Fields); err != nil {
		return nil, err
	}

	for _, ve := range errs {
		row, err := csvRow(ve)
		if err != nil {
			return nil, err
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvRow encodes one error in parser.Fields order
func csvRow(ve parser.ValidationError) ([]string, error) {
	values := []any{ve.ID, ve.Description, ve.Namespaces, ve.NamespacesDefinitions, ve.XPath, ve.PartURI, ve.ErrorType}
	row := make([]string, 0, len(values))
	for _, v := range values {
		cell, err := jsonCell(v)
		if err != nil {
			return nil, err
		}
		row = append(row, cell)
	}
	return row, nil
}

func jsonCell(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
