package normalizer

import (
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ascii passthrough", "ka", "ka"},
		{"ipa passthrough", "kʲaɴɕi", "kʲaɴɕi"},
		{"precomposed ring below", "\u1e01", "a\u0325"},
		{"already decomposed", "a\u0325", "a\u0325"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Canonical(tt.input)
			if result != tt.expected {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCanonicalEquivalence(t *testing.T) {
	// ḁ typed precomposed and decomposed must compare equal after Canonical
	if Canonical("\u1e01") != Canonical("a\u0325") {
		t.Error("precomposed and decomposed ring below should canonicalize to the same value")
	}
}

func TestDevoice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare vowel", "a", "a\u0325"},
		{"back unrounded", "ɯ", "ɯ\u0325"},
		{"cv mora", "ka", "ka\u0325"},
		{"palatal mora", "kʲi", "kʲi\u0325"},
		{"last vowel only", "ai", "ai\u0325"},
		{"no vowel", "ɴ", "ɴ"},
		{"consonant cluster", "tɕ", "tɕ"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Devoice(tt.input)
			if result != tt.expected {
				t.Errorf("Devoice(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsVowel(t *testing.T) {
	for _, r := range "aeiouɯ" {
		if !IsVowel(r) {
			t.Errorf("IsVowel(%q) = false, want true", r)
		}
	}
	for _, r := range "kɴʔɕ" {
		if IsVowel(r) {
			t.Errorf("IsVowel(%q) = true, want false", r)
		}
	}
}

func TestIsCombining(t *testing.T) {
	if !IsCombining(VoicelessMark) {
		t.Error("ring below should be a combining mark")
	}
	if IsCombining('a') {
		t.Error("'a' should not be a combining mark")
	}
	if IsCombining('ʲ') {
		t.Error("modifier letter small j is a spacing letter, not a combining mark")
	}
}

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"voiceless vowel", "ki\u0325", "ki"},
		{"precomposed", "\u1e01", "a"},
		{"modifier letters kept", "kʲa", "kʲa"},
		{"length mark kept", "toːkʲoː", "toːkʲoː"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("StripDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func BenchmarkDevoice(b *testing.B) {
	symbols := []string{"a", "kʲi", "tsɯ", "ɕo", "ɴ"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, s := range symbols {
			Devoice(s)
		}
	}
}

func BenchmarkCanonical(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Canonical("kʲaɴɕi\u1e01")
	}
}
