package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarforge/internal/model"
)

func sampleDraft() *model.Draft {
	return &model.Draft{
		Title:   "Soil Study: Plot A",
		Content: "Intro with **bold** and a [link](https://example.org).",
		Sections: []model.Section{
			{ID: "s1", Title: "Method", Content: "Dig."},
		},
		Citations: []model.Citation{{Title: "Soil Atlas", URL: "https://soil.example"}},
	}
}

func TestSplitMarkdownLinks(t *testing.T) {
	got := SplitMarkdownLinks("See [Go](https://go.dev) and [docs](http://pkg.go.dev/x) now")
	assert.Equal(t, []Segment{
		{Text: "See "},
		{Text: "Go", URL: "https://go.dev"},
		{Text: " and "},
		{Text: "docs", URL: "http://pkg.go.dev/x"},
		{Text: " now"},
	}, got)

	assert.Equal(t, []Segment{{Text: "plain"}}, SplitMarkdownLinks("plain"))
	assert.Nil(t, SplitMarkdownLinks(""))
	assert.Equal(t, []Segment{{Text: "[x](ftp://nope)"}}, SplitMarkdownLinks("[x](ftp://nope)"))
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleDraft())
	assert.True(t, strings.HasPrefix(got, "# Soil Study: Plot A\n\n"))
	assert.Contains(t, got, "## Method\n\nDig.")
	assert.Contains(t, got, "## References\n\n- [Soil Atlas](https://soil.example)\n")
}

func TestDraft_Formats(t *testing.T) {
	d := sampleDraft()

	f, err := Draft(d, FormatDoc)
	require.NoError(t, err)
	assert.Equal(t, MIMEDoc, f.MIMEType)
	assert.Equal(t, "Soil_Study_Plot_A.doc", f.Name)
	body := string(f.Data)
	assert.Contains(t, body, "urn:schemas-microsoft-com:office:word")
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, `<a href="https://example.org">link</a>`)

	f, err = Draft(d, FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, MIMEHTML, f.MIMEType)
	assert.True(t, strings.HasPrefix(string(f.Data), "<!DOCTYPE html>"))

	f, err = Draft(d, FormatText)
	require.NoError(t, err)
	text := string(f.Data)
	assert.Contains(t, text, "Intro with bold and a link (https://example.org).")
	assert.NotContains(t, text, "#")

	_, err = Draft(d, Format("pdf"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestPlainText(t *testing.T) {
	src := "# Results\n\nSome *italic* and `code` text.\n\n" +
		"1. first\n2. second\n\n" +
		"- [ ] todo\n- see <https://soil.example>\n\n" +
		"```go\nx := 1\n```\n\n" +
		"| site | count |\n|---|---|\n| A | 3 |\n"

	got := plainText(src)
	assert.Equal(t, "Results\n\n"+
		"Some italic and code text.\n\n"+
		"1. first\n2. second\n\n"+
		"- [ ] todo\n- see https://soil.example\n\n"+
		"x := 1\n\n"+
		"site\tcount\nA\t3\n", got)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat(" DOC ")
	require.NoError(t, err)
	assert.Equal(t, FormatDoc, f)

	_, err = ParseFormat("rtf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "draft", Filename("  "))
	assert.Equal(t, "a_b.c", Filename("a b.c"))
	assert.Len(t, Filename(strings.Repeat("x", 200)), 80)
}
