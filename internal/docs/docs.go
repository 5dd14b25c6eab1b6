// Package docs converts MarineDox document bodies, stored as HTML, into the
// Markdown and plain-text forms used by export, search and previews.
package docs

import (
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// block elements end a run of text.
var block = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "tr": true, "td": true,
	"th": true, "hr": true, "section": true, "article": true,
}

// Converter turns document HTML into Markdown.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates a converter with GitHub-flavored output (tables,
// strikethrough, task lists).
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// ToMarkdown converts an HTML body. A title, if given, becomes the leading
// H1 heading.
func (c *Converter) ToMarkdown(title, body string) (string, error) {
	out, err := c.converter.ConvertString(body)
	if err != nil {
		return "", err
	}
	out = cleanMarkdown(out)
	if title = strings.TrimSpace(title); title != "" {
		if out == "" {
			return "# " + title + "\n", nil
		}
		out = "# " + title + "\n\n" + out
	}
	return out + "\n", nil
}

// PlainText returns the visible text of an HTML body with whitespace
// collapsed. Unparseable input is returned with whitespace collapsed.
func PlainText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return strings.Join(strings.Fields(body), " ")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && block[n.Data] {
			sb.WriteByte(' ')
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Excerpt returns the first n runes of the plain text, cut back to a word
// boundary and suffixed with an ellipsis when truncated.
func Excerpt(body string, n int) string {
	text := PlainText(body)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}

// WordCount counts words in the plain text.
func WordCount(body string) int {
	return len(strings.Fields(PlainText(body)))
}

// Contains reports whether query occurs in the plain text, ignoring case.
func Contains(body, query string) bool {
	return strings.Contains(strings.ToLower(PlainText(body)), strings.ToLower(query))
}

func cleanMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
