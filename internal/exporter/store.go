package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/cdm-migrate/internal/utils"
)

// MetadataStore collects the page metadata of an export run keyed by page
// pointer.
type MetadataStore struct {
	pages map[string]map[string]any
}

func NewMetadataStore() *MetadataStore {
	return &MetadataStore{pages: make(map[string]map[string]any)}
}

// Add stores the non-empty fields of a page. Nothing is stored when every
// field is empty. It returns whether the page was stored.
func (s *MetadataStore) Add(pointer string, fields map[string]any) bool {
	kept := StripEmptyValues(fields)
	if len(kept) == 0 {
		return false
	}
	s.pages[pointer] = kept
	return true
}

// Get returns the stored fields of a page.
func (s *MetadataStore) Get(pointer string) (map[string]any, bool) {
	fields, ok := s.pages[pointer]
	return fields, ok
}

func (s *MetadataStore) Len() int {
	return len(s.pages)
}

// Flush writes the store as one JSON object to dir/name. An empty store
// writes nothing and returns "".
func (s *MetadataStore) Flush(dir, name string) (string, error) {
	if len(s.pages) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(s.pages)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// StripEmptyValues returns the entries of fields whose value is not empty.
// Empty means null, false, zero, an empty string or an empty object or
// array; CONTENTdm reports blank fields as {}.
func StripEmptyValues(fields map[string]any) map[string]any {
	kept := make(map[string]any, len(fields))
	for k, v := range fields {
		if !isEmptyValue(v) {
			kept[k] = v
		}
	}
	return kept
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case map[string]any:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return false
}
