package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// hdlExtensions are the file types handed to a simulator.
var hdlExtensions = map[string]bool{
	".v":   true,
	".sv":  true,
	".vh":  true,
	".svh": true,
}

// ResolveSources expands simulation.sources under tbDir, removes
// simulation.exclude matches and the DUT itself, and returns the DUT first
// followed by the remaining files in sorted order.
func (c *Config) ResolveSources(dutPath, tbDir string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.Simulation.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(tbDir, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if hdlExtensions[strings.ToLower(filepath.Ext(match))] {
				fileSet[filepath.Clean(match)] = true
			}
		}
	}

	for _, pattern := range c.Simulation.Exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(tbDir, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			delete(fileSet, filepath.Clean(match))
		}
	}

	var result []string
	if dutPath != "" {
		dutAbs, _ := filepath.Abs(dutPath)
		for f := range fileSet {
			if abs, _ := filepath.Abs(f); abs == dutAbs || filepath.Base(f) == filepath.Base(dutPath) {
				delete(fileSet, f)
			}
		}
		result = append(result, dutPath)
	}

	rest := make([]string, 0, len(fileSet))
	for f := range fileSet {
		rest = append(rest, f)
	}
	sort.Strings(rest)

	return append(result, rest...), nil
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if d.IsDir() {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}
		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// If pattern has no directory component, match against filename
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}

	// Also try matching just the trailing components
	segs := strings.Count(pattern, string(filepath.Separator)) + 1
	parts := strings.Split(path, string(filepath.Separator))
	if len(parts) > segs {
		tail := filepath.Join(parts[len(parts)-segs:]...)
		matched, _ := filepath.Match(pattern, tail)
		return matched
	}
	return false
}
