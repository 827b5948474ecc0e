package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/spf13/afero"
)

// exportName matches <base>_<timestamp>[-N].<ext> as produced by Export
var exportName = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2}T\d{2}_\d{2}_\d{2}(?:\.\d+)?Z)(?:-(\d+))?(\.csv|\.json)$`)

// CleanResult lists the files removed (or that would be removed) and kept
type CleanResult struct {
	Deleted []string
	Kept    []string
	Failed  map[string]error
}

// ExportBaseName returns the log name an export file was stamped from, e.g.
// "report.csv" for "report_2024-01-02T03_04_05.000000000Z.csv".
// Files that weren't produced by a timestamped export return "".
func ExportBaseName(fileName string) string {
	m := exportName.FindStringSubmatch(fileName)
	if m == nil {
		return ""
	}
	return m[1] + m[4]
}

// Clean keeps the newest keep timestamped exports per base name in dir and
// removes the rest. With dryRun nothing is removed.
func Clean(fs afero.Fs, dir string, keep int, dryRun bool) (*CleanResult, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	// Group files by log name (everything before the timestamp)
	groups := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := ExportBaseName(entry.Name())
		if base == "" {
			continue
		}
		groups[base] = append(groups[base], entry.Name())
	}

	result := &CleanResult{Failed: map[string]error{}}

	bases := make([]string, 0, len(groups))
	for base := range groups {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	for _, base := range bases {
		files := groups[base]
		sort.Slice(files, func(i, j int) bool {
			return exportLess(files[i], files[j])
		})

		if len(files) <= keep {
			result.Kept = append(result.Kept, files...)
			continue
		}

		cut := len(files) - keep
		result.Kept = append(result.Kept, files[cut:]...)
		for _, name := range files[:cut] {
			if !dryRun {
				if err := fs.Remove(filepath.Join(dir, name)); err != nil {
					result.Failed[name] = err
					continue
				}
			}
			result.Deleted = append(result.Deleted, name)
		}
	}

	return result, nil
}

// exportLess orders files by timestamp, then by collision suffix
func exportLess(a, b string) bool {
	ma, mb := exportName.FindStringSubmatch(a), exportName.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return a < b
	}
	if ma[2] != mb[2] {
		return ma[2] < mb[2]
	}
	return suffix(ma[3]) < suffix(mb[3])
}

func suffix(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
