package rules

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.json
var embeddedRules []byte

// Load builds a Store from a rule document held in memory.
//
// The document is {"providers": {"<name>": {...}, ...}}. Provider order in the
// source is preserved. JSON is read through the YAML decoder, so corpora written
// as YAML are accepted as well.
func Load(doc string) (*Store, error) {
	return decode([]byte(doc))
}

// LoadReader reads a rule document from r.
func LoadReader(r io.Reader) (*Store, error) {
	b, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, &ConfigReadError{Err: err}
	}
	return decode(b)
}

// LoadFile opens and reads the rule document at path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	s, err := LoadReader(f)
	var re *ConfigReadError
	if errors.As(err, &re) {
		re.Path = path
	}
	return s, err
}

// LoadEmbedded builds a Store from the corpus bundled with this package. It may lag
// behind upstream but is a reasonable baseline.
func LoadEmbedded() (*Store, error) {
	return decode(embeddedRules)
}

// EmbeddedSize is the size in bytes of the bundled corpus.
func EmbeddedSize() int { return len(embeddedRules) }

func decode(b []byte) (*Store, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, &ConfigSyntaxError{Err: err}
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &ConfigSyntaxError{Err: fmt.Errorf("line %d: expected an object with a providers field", doc.Line)}
	}
	provs := mappingValue(doc, "providers")
	if provs == nil {
		return nil, &ConfigSyntaxError{Err: errors.New("missing field `providers`")}
	}
	if provs.Kind != yaml.MappingNode {
		return nil, &ConfigSyntaxError{Err: fmt.Errorf("line %d: providers must be a map of provider objects", provs.Line)}
	}
	out := make([]*Provider, 0, len(provs.Content)/2)
	for i := 0; i+1 < len(provs.Content); i += 2 {
		name, body := provs.Content[i].Value, provs.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, &ConfigSyntaxError{Err: fmt.Errorf("line %d: provider %q must be an object", body.Line, name)}
		}
		if mappingValue(body, "urlPattern") == nil {
			return nil, &ConfigSyntaxError{Err: fmt.Errorf("line %d: provider %q: missing field `urlPattern`", body.Line, name)}
		}
		if err := checkPatternTypes(name, body); err != nil {
			return nil, &ConfigSyntaxError{Err: err}
		}
		var s Spec
		if err := body.Decode(&s); err != nil {
			return nil, &ConfigSyntaxError{Err: fmt.Errorf("provider %q: %w", name, err)}
		}
		p, err := NewProvider(name, s)
		if err != nil {
			return nil, &ConfigSyntaxError{Err: err}
		}
		out = append(out, p)
	}
	return &Store{providers: out}, nil
}

// patternLists are the provider fields holding lists of regular expressions.
var patternLists = []string{"rules", "rawRules", "referralMarketing", "exceptions", "redirections"}

// checkPatternTypes rejects patterns that are not strings. yaml.v3 would
// otherwise decode 1 or true into the string fields.
func checkPatternTypes(name string, body *yaml.Node) error {
	if n := mappingValue(body, "urlPattern"); !isString(n) {
		return fmt.Errorf("line %d: provider %q: urlPattern must be a string", n.Line, name)
	}
	for _, key := range patternLists {
		n := mappingValue(body, key)
		if n == nil {
			continue
		}
		if n.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: provider %q: %s must be a list of strings", n.Line, name, key)
		}
		for _, item := range n.Content {
			if !isString(item) {
				return fmt.Errorf("line %d: provider %q: %s must be a list of strings, got %s", item.Line, name, key, item.ShortTag())
			}
		}
	}
	return nil
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
