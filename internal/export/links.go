// Package export turns drafts into downloadable documents.
package export

import "regexp"

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)

// Segment is either plain text or a link; URL is empty for text.
type Segment struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// SplitMarkdownLinks breaks text into alternating text and link segments so
// clients can render links without a markdown parser.
func SplitMarkdownLinks(text string) []Segment {
	matches := markdownLink.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Text: text[last:m[0]]})
		}
		segments = append(segments, Segment{
			Text: text[m[2]:m[3]],
			URL:  text[m[4]:m[5]],
		})
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
