package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"forbidden characters", "My Video: Part 1/2?", "My Video_ Part 1_2_"},
		{"every forbidden character", `a/b\c?d%e*f:g|h"i<j>k`, "a_b_c_d_e_f_g_h_i_j_k"},
		{"clean title untouched", "Plain Title", "Plain Title"},
		{"decomposed accents composed", "Café", "Café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.input); got != tt.want {
				t.Fatalf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTitleTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := SanitizeTitle(long)
	if utf8.RuneCountInString(got) != MaxTitleRunes {
		t.Fatalf("expected %d runes, got %d", MaxTitleRunes, utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a rune")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("social"); got != "Social" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := DisplayName("burn_export"); got != "Burn Export" {
		t.Fatalf("unexpected display name: %q", got)
	}
}
