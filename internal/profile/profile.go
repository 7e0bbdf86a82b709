package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Profile describes one source publication: where the PDF is, which pages to
// read, the layout constants its typography needs, and the correction tables.
// The header-detection grammar is data, not code, so supporting a new volume
// means writing a new profile.
type Profile struct {
	PDF       string    `yaml:"pdf" json:"pdf"`
	Pages     PageRange `yaml:"pages" json:"pages"`
	SkipPages []string  `yaml:"skip_pages" json:"skip_pages"`
	Layout    Layout    `yaml:"layout" json:"layout"`
	Heuristic Heuristic `yaml:"heuristic" json:"heuristic"`
	Rules     RuleFiles `yaml:"rules" json:"rules"`
	Tabulate  Tabulate  `yaml:"tabulate" json:"tabulate"`

	skipRanges [][2]int
}

// PageRange is an inclusive 1-based page interval.
type PageRange struct {
	First int `yaml:"first" json:"first"`
	Last  int `yaml:"last" json:"last"`
}

// Layout holds the geometric constants for text reconstruction.
type Layout struct {
	// HeaderZone is the fraction of the page height, from the top, holding
	// the running head rather than entry text.
	HeaderZone float64 `yaml:"header_zone" json:"header_zone"`
	// RowTolerance is the vertical distance in points within which glyph
	// runs belong to the same text line.
	RowTolerance float64 `yaml:"row_tolerance" json:"row_tolerance"`
	// WordGap is the horizontal gap, as a multiple of the font size, beyond
	// which two runs on a line are separated by a space.
	WordGap float64 `yaml:"word_gap" json:"word_gap"`
}

// Heuristic holds the thresholds of the default header classifier.
type Heuristic struct {
	// MinHeight is the minimum average glyph height of a header line.
	MinHeight float64 `yaml:"min_height" json:"min_height"`
	// MinDistance is the minimum vertical distance from the previous line.
	MinDistance float64 `yaml:"min_distance" json:"min_distance"`
	// BlankDistance is the vertical distance at which a blank separator
	// line is emitted between two text lines.
	BlankDistance float64 `yaml:"blank_distance" json:"blank_distance"`
}

// RuleFiles names the correction tables for the extraction stage.
type RuleFiles struct {
	Replacements string `yaml:"replacements" json:"replacements"`
	Headers      string `yaml:"headers" json:"headers"`
	NonHeaders   string `yaml:"non_headers" json:"non_headers"`
}

// Tabulate holds settings for the record-segmentation stage.
type Tabulate struct {
	// NameReplacements is a CSV mapping misparsed names to corrected ones,
	// applied before field derivation.
	NameReplacements string `yaml:"name_replacements" json:"name_replacements"`
}

// Default returns the constants of the 1917-1944 volume. A loaded profile
// starts from these, so a minimal YAML file only has to name the PDF.
func Default() Profile {
	return Profile{
		Pages: PageRange{First: 1, Last: 0},
		Layout: Layout{
			HeaderZone:   0.047,
			RowTolerance: 5.0,
			WordGap:      0.3,
		},
		Heuristic: Heuristic{
			MinHeight:     8.5,
			MinDistance:   24.0,
			BlankDistance: 12.5,
		},
	}
}

// Load reads a profile from YAML, validates it against the embedded schema
// and resolves the skip-page ranges. Validation failures are fatal: a broken
// profile would silently misclassify an entire volume.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes profile YAML.
func Parse(data []byte) (Profile, error) {
	if err := validate(data); err != nil {
		return Profile{}, err
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.resolveSkipRanges(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// validate converts the YAML to a JSON value and checks it against the schema.
func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profile yaml: %w", err)
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("profile to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(jsonBytes, &v); err != nil {
		return fmt.Errorf("profile to json: %w", err)
	}

	schema, err := jsonschema.CompileString("profile.schema.json", profileSchema)
	if err != nil {
		return fmt.Errorf("compile profile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

func (p *Profile) resolveSkipRanges() error {
	p.skipRanges = p.skipRanges[:0]
	for _, entry := range p.SkipPages {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if first, last, ok := strings.Cut(entry, "-"); ok {
			a, err1 := strconv.Atoi(strings.TrimSpace(first))
			b, err2 := strconv.Atoi(strings.TrimSpace(last))
			if err1 != nil || err2 != nil || a > b {
				return fmt.Errorf("invalid skip page range %q", entry)
			}
			p.skipRanges = append(p.skipRanges, [2]int{a, b})
			continue
		}
		n, err := strconv.Atoi(entry)
		if err != nil {
			return fmt.Errorf("invalid skip page %q", entry)
		}
		p.skipRanges = append(p.skipRanges, [2]int{n, n})
	}
	return nil
}

// Skipped reports whether a 1-based page number is in a skip range. Skipped
// pages are unnumbered extras in the source; omitting them keeps the
// continuous page numbering aligned with the printed volume.
func (p *Profile) Skipped(page int) bool {
	for _, r := range p.skipRanges {
		if page >= r[0] && page <= r[1] {
			return true
		}
	}
	return false
}
