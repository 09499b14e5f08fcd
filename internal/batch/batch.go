package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a batch report: every input URL with the outcome of cleaning it.
// It is also accepted as input, in which case only the url fields are used.
type File struct {
	Version int    `yaml:"version"`
	Items   []Item `yaml:"items"`
}

type Item struct {
	Line    int    `yaml:"line,omitempty"`
	URL     string `yaml:"url"`
	Cleaned string `yaml:"cleaned,omitempty"`
	Changed bool   `yaml:"changed,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported batch version: %d", f.Version)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("batch has no items")
	}
	return &f, nil
}

// Write renders f as YAML.
func (f *File) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes f to path, replacing any existing file.
func (f *File) Save(path string) error {
	tmp, err := os.CreateTemp(dirOf(path), ".batch.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Summary counts items by outcome.
func (f *File) Summary() (total, changed, failed int) {
	for _, it := range f.Items {
		total++
		switch {
		case it.Error != "":
			failed++
		case it.Changed:
			changed++
		}
	}
	return
}

// ReadLines reads one URL per line. Blank lines and lines starting with # are
// skipped; surrounding whitespace is trimmed.
func ReadLines(r io.Reader) ([]Item, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024), 1024*1024)
	var out []Item
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, Item{Line: lineNum, URL: line})
	}
	return out, s.Err()
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i+1]
	}
	return "."
}
