package category

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtract_Default(t *testing.T) {
	d := Default()
	tests := []struct {
		query string
		want  string
	}{
		{"sac bleu", "Accessoires"},
		{"Je cherche une SACOCHE en cuir", "Accessoires"},
		{"des baskets blanches", "Chaussures"},
		{"un canapé confortable", "Mobilier"},
		{"je veux une banane", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			if got := d.Extract(tc.query); got != tc.want {
				t.Errorf("Extract(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestExtract_FirstEntryWins(t *testing.T) {
	d, err := New([]Entry{
		{Name: "a", Keywords: []string{"bleu"}},
		{Name: "b", Keywords: []string{"sac"}},
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := d.Extract("sac bleu"); got != "a" {
		t.Errorf("expected dictionary order to win, got %q", got)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	d := Default()
	queries := []string{"sac bleu", "robe rouge", "chaise", "rien du tout"}
	for _, q := range queries {
		first := d.Extract(q)
		for i := 0; i < 20; i++ {
			if got := d.Extract(q); got != first {
				t.Fatalf("Extract(%q) changed between calls: %q vs %q", q, first, got)
			}
		}
	}
}

func TestKeywords(t *testing.T) {
	d := Default()
	tests := []struct {
		query string
		want  []string
	}{
		{"Je cherche un sac bleu", []string{"sac", "bleu"}},
		{"je veux une banane!", []string{"banane"}},
		{"je veux un", []string{}},
		{"robe, rouge.", []string{"robe", "rouge"}},
		{"t-shirt XL", []string{"tshirt"}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := d.Keywords(tc.query)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Keywords(%q) = %#v, want %#v", tc.query, got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	d := Default()
	if got := d.Resolve("sac"); got != "Accessoires" {
		t.Errorf("Resolve(sac) = %q", got)
	}
	if got := d.Resolve(" accessoires "); got != "Accessoires" {
		t.Errorf("Resolve(accessoires) = %q", got)
	}
	if got := d.Resolve("Jardin"); got != "Jardin" {
		t.Errorf("unknown category must pass through, got %q", got)
	}
	if got := d.Resolve(""); got != "" {
		t.Errorf("Resolve(\"\") = %q", got)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"missing name", []Entry{{Keywords: []string{"x"}}}},
		{"no keywords", []Entry{{Name: "x", Keywords: []string{" "}}}},
		{"duplicate", []Entry{{Name: "x", Keywords: []string{"a"}}, {Name: "X", Keywords: []string{"b"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.entries, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	data := []byte(`
categories:
  - name: sac
    catalog: Accessoires
    keywords: [sac, besace]
  - name: fruits
    keywords: [banane, pomme]
stop_words: [je, veux]
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", d.Len())
	}
	if got := d.Extract("je veux une banane"); got != "fruits" {
		t.Errorf("Extract = %q, want fruits", got)
	}
	// "une" is not a stop word in this file
	if got := d.Keywords("je veux une banane"); !reflect.DeepEqual(got, []string{"une", "banane"}) {
		t.Errorf("Keywords = %#v", got)
	}
	if got := d.Categories(); !reflect.DeepEqual(got, []string{"Accessoires", "fruits"}) {
		t.Errorf("Categories = %#v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
