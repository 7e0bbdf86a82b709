package rules

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Set bundles the three correction tables applied during extraction: whole-line
// text replacements, lines forced to be headers, and line prefixes forced to be
// body text. Overrides always win over the default heuristic.
type Set struct {
	replacements map[string]string
	forced       map[string]struct{}
	nonHeader    []string

	usedReplacements map[string]bool
	usedForced       map[string]bool
	usedNonHeader    map[string]bool

	logger *slog.Logger
}

// Paths names the rule files. Any path may be empty; a missing file yields an
// empty table and a warning, matching the best-effort policy.
type Paths struct {
	Replacements string
	Headers      string
	NonHeaders   string
}

// Load reads all three tables. It never fails on a missing file.
func Load(p Paths, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Set{
		replacements:     map[string]string{},
		forced:           map[string]struct{}{},
		usedReplacements: map[string]bool{},
		usedForced:       map[string]bool{},
		usedNonHeader:    map[string]bool{},
		logger:           logger,
	}

	if p.Replacements != "" {
		m, err := loadReplacements(p.Replacements)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("rules.replacements.missing", "path", p.Replacements)
			} else {
				return nil, fmt.Errorf("load replacements %s: %w", p.Replacements, err)
			}
		} else {
			s.replacements = m
			logger.Info("rules.replacements.loaded", "path", p.Replacements, "entries", len(m))
		}
	}

	if p.Headers != "" {
		lines, err := loadLines(p.Headers)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("rules.headers.missing", "path", p.Headers)
			} else {
				return nil, fmt.Errorf("load header patterns %s: %w", p.Headers, err)
			}
		} else {
			for _, ln := range lines {
				s.forced[ln] = struct{}{}
			}
			logger.Info("rules.headers.loaded", "path", p.Headers, "entries", len(lines))
		}
	}

	if p.NonHeaders != "" {
		lines, err := loadLines(p.NonHeaders)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("rules.non_headers.missing", "path", p.NonHeaders)
			} else {
				return nil, fmt.Errorf("load non-header patterns %s: %w", p.NonHeaders, err)
			}
		} else {
			s.nonHeader = lines
			logger.Info("rules.non_headers.loaded", "path", p.NonHeaders, "entries", len(lines))
		}
	}

	return s, nil
}

// Empty returns a Set with no entries, useful for tests and bare runs.
func Empty() *Set {
	s, _ := Load(Paths{}, slog.Default())
	return s
}

// AddReplacement registers a single replacement entry.
func (s *Set) AddReplacement(raw, corrected string) {
	s.replacements[raw] = corrected
}

// AddForcedHeader registers a line that must classify as a header.
func (s *Set) AddForcedHeader(line string) {
	s.forced[line] = struct{}{}
}

// AddForcedNonHeader registers a prefix that must classify as body text.
func (s *Set) AddForcedNonHeader(prefix string) {
	s.nonHeader = append(s.nonHeader, prefix)
}

// Apply rewrites a line using the replacement table. Entries map whole raw
// lines to corrected lines, so applying the table twice is a no-op: a line
// already holding only corrected text is not a key unless it maps to itself.
func (s *Set) Apply(line string) string {
	if corrected, ok := s.replacements[line]; ok {
		s.usedReplacements[line] = true
		return corrected
	}
	return line
}

// IsForcedHeader reports whether a line exactly matches the inclusion list.
func (s *Set) IsForcedHeader(line string) bool {
	if _, ok := s.forced[line]; ok {
		s.usedForced[line] = true
		return true
	}
	return false
}

// IsForcedNonHeader reports whether a line starts with an exclusion prefix.
func (s *Set) IsForcedNonHeader(line string) bool {
	for _, prefix := range s.nonHeader {
		if strings.HasPrefix(line, prefix) {
			s.usedNonHeader[prefix] = true
			return true
		}
	}
	return false
}

// ReportUnused logs every table entry that never matched during a run. These
// usually point at stale corrections after a new scan of the source PDF.
func (s *Set) ReportUnused() {
	for raw := range s.replacements {
		if !s.usedReplacements[raw] {
			s.logger.Warn("rules.replacement.unused", "raw", raw)
		}
	}
	for line := range s.forced {
		if !s.usedForced[line] {
			s.logger.Warn("rules.forced_header.unused", "line", line)
		}
	}
	for _, prefix := range s.nonHeader {
		if !s.usedNonHeader[prefix] {
			s.logger.Warn("rules.forced_non_header.unused", "prefix", prefix)
		}
	}
}

// loadReplacements reads a two-column semicolon-delimited CSV of raw;corrected
// line pairs. Rows with fewer than two columns are skipped.
func loadReplacements(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	m := map[string]string{}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		raw := strings.TrimSpace(rec[0])
		corrected := strings.TrimSpace(rec[1])
		if raw != "" && corrected != "" {
			m[raw] = corrected
		}
	}
	return m, nil
}

// loadLines reads a line-oriented pattern file, dropping blank lines.
func loadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ln := range strings.Split(string(data), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out, nil
}
