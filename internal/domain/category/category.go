// Package category detects shopper intent categories from free text.
//
// The keyword table is data: it is loaded from YAML so categories can be
// extended without touching the matching code.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry maps a group of keyword substrings to a catalog category.
type Entry struct {
	// Name is the short identifier of the group, e.g. "sac".
	Name string `yaml:"name"`
	// Catalog is the category label used by the product catalog, e.g. "Accessoires".
	// Defaults to Name.
	Catalog  string   `yaml:"catalog"`
	Keywords []string `yaml:"keywords"`
}

type file struct {
	Categories []Entry   `yaml:"categories"`
	StopWords  *[]string `yaml:"stop_words"`
}

// Dictionary is an ordered keyword table. Order is the tie-break: the first
// matching entry wins.
type Dictionary struct {
	entries   []Entry
	stopWords map[string]struct{}
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// New validates entries and builds a dictionary. A nil stopWords uses DefaultStopWords.
func New(entries []Entry, stopWords []string) (*Dictionary, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: name is required", i)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("category %q: duplicate name", name)
		}
		seen[strings.ToLower(name)] = true

		kws := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("category %q: at least one keyword is required", name)
		}

		catalog := strings.TrimSpace(e.Catalog)
		if catalog == "" {
			catalog = name
		}
		out = append(out, Entry{Name: name, Catalog: catalog, Keywords: kws})
	}

	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	return &Dictionary{entries: out, stopWords: sw}, nil
}

// Parse builds a dictionary from YAML.
func Parse(data []byte) (*Dictionary, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	var stop []string
	if f.StopWords != nil {
		stop = *f.StopWords
	}
	return New(f.Categories, stop)
}

// Load reads a YAML dictionary from path.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read categories %s: %w", path, err)
	}
	return Parse(data)
}

// Extract returns the catalog category of the first entry with a keyword
// contained in q, or "" when nothing matches.
func (d *Dictionary) Extract(q string) string {
	lower := strings.ToLower(q)
	if strings.TrimSpace(lower) == "" {
		return ""
	}
	for _, e := range d.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				return e.Catalog
			}
		}
	}
	return ""
}

// Keywords returns the meaningful tokens of q: lowercased, stop-words and
// tokens of two runes or fewer removed, non-word characters stripped.
// The result may be empty; callers then search with the whole text.
func (d *Dictionary) Keywords(q string) []string {
	fields := strings.Fields(strings.ToLower(q))
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if _, stop := d.stopWords[tok]; stop {
			continue
		}
		if len([]rune(tok)) <= 2 {
			continue
		}
		tok = nonWord.ReplaceAllString(tok, "")
		if tok == "" {
			continue
		}
		if _, stop := d.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Resolve maps a caller-supplied category (group name or catalog label) to the
// catalog label. Unknown values are returned trimmed and unchanged.
func (d *Dictionary) Resolve(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	for _, e := range d.entries {
		if strings.EqualFold(e.Name, category) || strings.EqualFold(e.Catalog, category) {
			return e.Catalog
		}
	}
	return category
}

// Categories returns the catalog labels in dictionary order, without duplicates.
func (d *Dictionary) Categories() []string {
	seen := make(map[string]bool, len(d.entries))
	out := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if !seen[e.Catalog] {
			seen[e.Catalog] = true
			out = append(out, e.Catalog)
		}
	}
	return out
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }
