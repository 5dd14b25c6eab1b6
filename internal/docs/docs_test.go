package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMarkdown(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		title    string
		body     string
		contains []string
	}{
		{
			name:     "heading and paragraph",
			body:     "<h2>Setup</h2><p>Install the <strong>agent</strong>.</p>",
			contains: []string{"## Setup", "Install the **agent**."},
		},
		{
			name:     "title becomes h1",
			title:    "Runbook",
			body:     "<p>Step one</p>",
			contains: []string{"# Runbook\n\nStep one"},
		},
		{
			name:     "list",
			body:     "<ul><li>alpha</li><li>beta</li></ul>",
			contains: []string{"- alpha", "- beta"},
		},
		{
			name:     "strikethrough",
			body:     "<p><del>old</del> new</p>",
			contains: []string{"~~old~~ new"},
		},
		{
			name:     "link",
			body:     `<p><a href="https://example.com">docs</a></p>`,
			contains: []string{"[docs](https://example.com)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ToMarkdown(tt.title, tt.body)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.True(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestToMarkdown_EmptyBody(t *testing.T) {
	got, err := NewConverter().ToMarkdown("Empty", "")
	require.NoError(t, err)
	assert.Equal(t, "# Empty\n", got)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"paragraphs", "<p>Hello</p><p>world</p>", "Hello world"},
		{"inline", "<p>Hello <em>big</em> world</p>", "Hello big world"},
		{"script dropped", "<p>a</p><script>alert(1)</script><p>b</p>", "a b"},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"plain input", "just text", "just text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.body))
		})
	}
}

func TestExcerpt(t *testing.T) {
	body := "<p>The quick brown fox jumps over the lazy dog</p>"

	assert.Equal(t, "The quick brown fox jumps over the lazy dog", Excerpt(body, 100))
	assert.Equal(t, "The quick…", Excerpt(body, 12))
	assert.Equal(t, "The quick brown fox jumps over the lazy dog", Excerpt(body, 0))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 4, WordCount("<h1>Title</h1><p>three more words</p>"))
}

func TestContains(t *testing.T) {
	body := "<p>Deploy the <b>Gateway</b> service</p>"
	assert.True(t, Contains(body, "gateway"))
	assert.True(t, Contains(body, "the gateway"))
	assert.False(t, Contains(body, "<b>"))
}
