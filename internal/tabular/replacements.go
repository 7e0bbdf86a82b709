package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadNameReplacements reads the comma-delimited name correction table for
// the tabulation stage. A missing file is not an error; it just means no
// corrections.
func LoadNameReplacements(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	m := map[string]string{}
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		original := strings.TrimSpace(rec[0])
		replacement := strings.TrimSpace(rec[1])
		if original != "" && replacement != "" {
			m[original] = replacement
		}
	}
	return m, nil
}
