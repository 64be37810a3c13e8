package stringutil

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"already normal", "safety management", "safety management"},
		{"uppercase", "GeM Procurement", "gem procurement"},
		{"punctuation splits words", "Safety Management System(SMS)", "safety management system sms"},
		{"collapse whitespace", "  airport   operations  ", "airport operations"},
		{"mixed punctuation", "Fee/Day - Rs.", "fee day rs"},
		{"digits kept", "Domain 3", "domain 3"},
		{"accents folded", "résumé review", "resume review"},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeWords(t *testing.T) {
	got := NormalizeWords("Safety Management System(SMS)")
	want := []string{"safety", "management", "system", "sms"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeWords() = %v, want %v", got, want)
	}

	if words := NormalizeWords("   "); len(words) != 0 {
		t.Errorf("NormalizeWords(blank) = %v, want empty", words)
	}
}
