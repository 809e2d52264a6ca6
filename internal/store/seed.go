package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadMemory builds a Memory store from dir: one <Model>.yml per model, each a
// sequence of records. A missing dir gives an empty store.
func LoadMemory(dir string) (*Memory, error) {
	m := NewMemory()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var recs []Record
		if err := yaml.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		// пустой файл тоже объявляет модель
		m.Add(strings.TrimSuffix(e.Name(), ".yml"), recs...)
	}
	return m, nil
}
