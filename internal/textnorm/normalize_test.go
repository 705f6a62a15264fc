package textnorm

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestNormalize_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "\x00\x01"} {
		if got, ok := Normalize(in); ok {
			t.Errorf("Normalize(%q) = %q, want not ok", in, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim", "  sac bleu  ", "sac bleu"},
		{"collapse", "sac   \t  bleu", "sac bleu"},
		{"single tab kept", "sac\tbleu", "sac\tbleu"},
		{"controls", "Chaise\x00\x01bleue", "Chaise bleue"},
		{"latin1 mojibake", "CafÃ©", "Café"},
		{"cp1252 apostrophe", "lâ€™été", "l’été"},
		{"nfc", "e\u0301te\u0301", "\u00e9t\u00e9"},
		{"already clean", "Sac à main bleu marine", "Sac à main bleu marine"},
		{"ellipsis mojibake", "attendezâ€¦", "attendez…"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.in)
			if !ok {
				t.Fatalf("Normalize(%q) not ok", tc.in)
			}
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"sac bleu",
		"  Je  cherche\tun SAC  ",
		"CafÃ©",
		"Ã\u0083Â©",
		"lâ€™été",
		"Ã©",
		"x\x00\x00y",
		"bonjour\n\n\nmonde",
		"日本語のテキスト",
		"émoji 👜 sac",
	}
	for _, s := range samples {
		once, ok := Normalize(s)
		if !ok {
			t.Fatalf("Normalize(%q) not ok", s)
		}
		twice, ok := Normalize(once)
		if !ok || twice != once {
			t.Errorf("not idempotent for %q: %q -> %q", s, once, twice)
		}
	}
}

// misdecode renders s as UTF-8 bytes read back as Latin-1, layers times.
func misdecode(t *testing.T, s string, layers int) string {
	t.Helper()
	for i := 0; i < layers; i++ {
		out, err := charmap.ISO8859_1.NewDecoder().String(s)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		s = out
	}
	return s
}

func TestNormalize_DeepMojibake(t *testing.T) {
	for layers := 1; layers <= 7; layers++ {
		in := misdecode(t, "sac été", layers)
		once, ok := Normalize(in)
		if !ok {
			t.Fatalf("%d layers: not ok", layers)
		}
		if once != "sac été" {
			t.Errorf("%d layers: Normalize = %q, want %q", layers, once, "sac été")
		}
		if twice, _ := Normalize(once); twice != once {
			t.Errorf("%d layers: not idempotent: %q -> %q", layers, once, twice)
		}
	}
}

func TestNormalize_Idempotent_Layered(t *testing.T) {
	for _, base := range []string{"lâ€™été", "Crème brûlée", strings.Repeat("à", 3)} {
		for layers := 0; layers <= 6; layers++ {
			in := misdecode(t, base, layers)
			once, _ := Normalize(in)
			if twice, _ := Normalize(once); twice != once {
				t.Errorf("%q with %d layers: %q -> %q", base, layers, once, twice)
			}
		}
	}
}

func TestRepairMojibake_RejectsNonLatin1(t *testing.T) {
	in := "日本"
	if got := RepairMojibake(in); got != in {
		t.Errorf("RepairMojibake(%q) = %q", in, got)
	}
}

func TestRepairMojibake_KeepsGenuineAccents(t *testing.T) {
	in := "été"
	if got := RepairMojibake(in); got != in {
		t.Errorf("RepairMojibake(%q) = %q", in, got)
	}
}
