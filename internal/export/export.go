package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"scholarforge/internal/model"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatDoc      Format = "doc"
)

const (
	MIMEText     = "text/plain; charset=utf-8"
	MIMEMarkdown = "text/markdown; charset=utf-8"
	MIMEHTML     = "text/html; charset=utf-8"
	MIMEDoc      = "application/msword"
)

type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatMarkdown, nil
	case FormatText, FormatMarkdown, FormatHTML, FormatDoc:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// Draft renders the draft in the requested format.
func Draft(d *model.Draft, format Format) (*File, error) {
	source := Markdown(d)
	name := Filename(d.Title)

	switch format {
	case FormatMarkdown:
		return &File{Name: name + ".md", MIMEType: MIMEMarkdown, Data: []byte(source)}, nil
	case FormatText:
		return &File{Name: name + ".txt", MIMEType: MIMEText, Data: []byte(plainText(source))}, nil
	case FormatHTML, FormatDoc:
		body, err := renderHTML(source)
		if err != nil {
			return nil, err
		}
		doc := htmlShell(d.Title, body, format == FormatDoc)
		if format == FormatDoc {
			return &File{Name: name + ".doc", MIMEType: MIMEDoc, Data: doc}, nil
		}
		return &File{Name: name + ".html", MIMEType: MIMEHTML, Data: doc}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Markdown assembles title, body, sections and citations into one document.
func Markdown(d *model.Draft) string {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", d.Title)
	}
	if body := strings.TrimSpace(d.Content); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		if c := strings.TrimSpace(s.Content); c != "" {
			b.WriteString(c)
			b.WriteString("\n\n")
		}
	}
	if len(d.Citations) > 0 {
		b.WriteString("## References\n\n")
		for _, c := range d.Citations {
			if c.URL != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", c.Title, c.URL)
			} else {
				fmt.Fprintf(&b, "- %s\n", c.Title)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderHTML(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("render markdown failed: %w", err)
	}
	return buf.Bytes(), nil
}

// htmlShell wraps rendered markup in a standalone page. Word processors open
// the doc variant as a document because of the office namespaces.
func htmlShell(title string, body []byte, word bool) []byte {
	var b bytes.Buffer
	if word {
		b.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">`)
	} else {
		b.WriteString("<!DOCTYPE html>\n<html>")
	}
	b.WriteString("\n<head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title></head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename derives a download-safe base name from a title.
func Filename(title string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(title), "_"), "_.")
	if name == "" {
		return "draft"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
