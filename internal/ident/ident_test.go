package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "accents and punctuation", input: "  Café Déjà-Vu!! ", expected: "caf-dj-vu"},
		{name: "plain name", input: "Sunrise Cafe", expected: "sunrise-cafe"},
		{name: "already a slug", input: "quickfix-plumbing", expected: "quickfix-plumbing"},
		{name: "repeated separators", input: "A  --  B", expected: "a-b"},
		{name: "leading and trailing hyphens", input: "--abc--", expected: "abc"},
		{name: "tabs and newlines", input: "Joe's\tPizza\nPlace", expected: "joes-pizza-place"},
		{name: "only symbols", input: "!!!", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.input))
		})
	}
}

func TestSlug_Idempotent(t *testing.T) {
	inputs := []string{"  Café Déjà-Vu!! ", "Sunrise Cafe", "a--b", "", "x y z"}
	for _, in := range inputs {
		once := Slug(in)
		assert.Equal(t, once, Slug(once), "input %q", in)
	}
}

func TestSourceToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Table 1", "table_1"},
		{"Email Footer", "email_footer"},
		{"  Front Desk ", "front_desk"},
		{`"Bob's" Counter`, "bobs_counter"},
		{"already_token", "already_token"},
		{"a - b", "a_b"},
		{"__x__", "x"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SourceToken(tt.input))
		})
	}
}

func TestSlugAndSourceTokenDiffer(t *testing.T) {
	assert.Equal(t, "front-desk", Slug("Front Desk"))
	assert.Equal(t, "front_desk", SourceToken("Front Desk"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://reviews.example.com/r/sunrise-cafe?src=table_1",
		PublicURL("https://reviews.example.com/", "sunrise-cafe", "table_1"))
	assert.Equal(t, "http://localhost:3000/r/sunrise-cafe",
		PublicURL("http://localhost:3000", "sunrise-cafe", ""))
	assert.Equal(t, "http://x/r/s?src=a+b", PublicURL("http://x", "s", "a b"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
