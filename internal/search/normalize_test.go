package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"lowercases", "Kigali City", "kigali city"},
		{"strips accents", "Kigali café", "kigali cafe"},
		{"punctuation becomes space", "2-bed, long-term!", "2 bed long term"},
		{"collapses whitespace", "  sea   view\tvilla ", "sea view villa"},
		{"drops non latin letters", "Zürich straße", "zurich stra e"},
		{"keeps digits", "Room 101", "room 101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Kigali café",
		"  Été à Gisenyi -- 3 Bedrooms!! ",
		"ÀÉÎÕÜ ñ ç",
		"apt/flat #12 @ Nyarutarama",
		"日本語 mixed with latin",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_DiacriticInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("kigali cafe"), Normalize("Kigali café"))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"stop words removed", "the hotel in kigali", []string{"hotel", "kigali"}},
		{"single characters removed", "a 2 b villa", []string{"villa"}},
		{"duplicates kept in order", "villa kigali villa", []string{"villa", "kigali", "villa"}},
		{"near and with are stop words", "apartment near lake with pool", []string{"apartment", "lake", "pool"}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("kigali city apartment", "city"))
	assert.True(t, containsWord("kigali city apartment", "kigali city"))
	assert.True(t, containsWord("apt", "apt"))
	assert.False(t, containsWord("apartments", "apartment"))
	assert.False(t, containsWord("cityscape city", "scape"))
	assert.True(t, containsWord("cityscape city", "city"))
	assert.False(t, containsWord("", "city"))
	assert.False(t, containsWord("city", ""))
}
