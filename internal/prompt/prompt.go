// Package prompt renders the instructions sent to the generative model.
// Rendering is deterministic: the same input always yields the same text.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const (
	DefaultThesisCount = 5
	MaxThesisCount     = 10
	DefaultSlideCount  = 8
	MaxSlideCount      = 20
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"inc":   func(i int) int { return i + 1 },
	"quote": func(s string) string { return "\"" + s + "\"" },
}

var templates = template.Must(template.New("prompts").Funcs(funcs).Parse(`
{{define "theses"}}Propose {{.Count}} distinct, arguable thesis statements for an academic paper.
Topic: {{.Topic}}
{{- if .Field}}
Field of study: {{.Field}}{{end}}
{{- if .Level}}
Academic level: {{.Level}}{{end}}
For each thesis give the statement and a one-sentence rationale explaining why it is researchable.{{end}}

{{define "outline"}}Create a section outline for a research paper that argues the thesis below.
Thesis: {{.Thesis}}
{{- if .Field}}
Field of study: {{.Field}}{{end}}
Return the sections in reading order. Each section has a title, a type (one of introduction, background, method, argument, counterargument, conclusion) and two or three sentences describing its content.{{end}}

{{define "sources"}}Find {{.Count}} credible academic or institutional sources about the topic below.
Topic: {{.Topic}}
For each source write one line in the form "- [Title](URL): why it is relevant". Prefer peer-reviewed work and primary data.{{end}}

{{define "summary"}}Summarize the following source for a student writing a paper.
{{- if .Title}}
Source title: {{.Title}}{{end}}
{{- if .Focus}}
Focus the summary on: {{.Focus}}{{end}}
Give the main argument, the evidence used, and limitations, in plain prose.

SOURCE TEXT:
{{.Text}}{{end}}

{{define "section"}}Write the "{{.SectionTitle}}" section of a document titled {{quote .DocumentTitle}}.
{{- if .Tone}}
Tone: {{.Tone}}{{end}}
{{- if .Notes}}
Author notes to incorporate:
{{.Notes}}{{end}}
Write only the section body in markdown, without repeating the section title.{{end}}

{{define "rewrite"}}Rewrite the text below. Instruction: {{.Instruction}}
Keep the meaning and any markdown links intact. Return only the rewritten text.

TEXT:
{{.Text}}{{end}}

{{define "report"}}Draft a {{.Kind}} report titled {{quote .Title}}.
{{- if .Details}}
Details provided by the author:
{{.Details}}{{end}}
Return the report as ordered sections, each with a title, a type and markdown content.{{end}}

{{define "cv"}}Write a professional academic CV{{if .TargetRole}} aimed at the role "{{.TargetRole}}"{{end}}.
Name: {{.Name}}
{{- if .Email}}
Email: {{.Email}}{{end}}
{{- if .Phone}}
Phone: {{.Phone}}{{end}}
{{- if .Education}}
Education:
{{.Education}}{{end}}
{{- if .Experience}}
Experience:
{{.Experience}}{{end}}
{{- if .Skills}}
Skills: {{join .Skills ", "}}{{end}}
Produce a headline, a short summary, experience and education entries with concrete highlights, and a skills list. Do not invent employers or degrees that are not listed.{{end}}

{{define "cover_letter"}}Write a cover letter{{if .Name}} for {{.Name}}{{end}} applying to {{.Company}}.
Job description:
{{.JobDescription}}
{{- if .CVSummary}}

Candidate background:
{{.CVSummary}}{{end}}
Keep it under 400 words, address the hiring team, and connect the background to the job requirements.{{end}}

{{define "presentation"}}Plan a {{.Slides}}-slide presentation on {{quote .Topic}}{{if .Audience}} for {{.Audience}}{{end}}.
For each slide give a title, three to five concise bullets, speaker notes, and a short prompt describing an illustrative image.{{end}}

{{define "slide_image"}}Create a clean presentation illustration: {{.Prompt}}
{{- if .Style}}
Style: {{.Style}}{{end}}
No text in the image, 16:9 framing, neutral background.{{end}}

{{define "data"}}Analyze the dataset below ({{.Rows}} rows, columns: {{join .Columns ", "}}).
{{- if .Truncated}}
Only the first rows are shown.{{end}}
Question: {{.Question}}
Return a summary, key insights, notable statistics as name/value pairs, and one suggested chart.

CSV:
{{.CSV}}{{end}}

{{define "field_report"}}Write a field trip report titled {{quote .Trip}}.
{{- if .Observations}}
Observations:
{{range $i, $o := .Observations}}{{inc $i}}. {{$o}}
{{end}}{{end}}
{{- if .Table}}
Recorded data:
{{.Table}}{{end}}
Structure the report with Introduction, Site and Methods, Findings, and Conclusion headings in markdown.{{end}}

{{define "specimen"}}Identify the organism or specimen in the attached photo.
{{- if .Hint}}
Context from the observer: {{.Hint}}{{end}}
Give the common name, scientific name, a confidence between 0 and 1, and a short description of identifying features.{{end}}

{{define "assignment"}}Solve the following {{.Subject}} assignment{{if .Level}} at {{.Level}} level{{end}}.
Question:
{{.Question}}
Show the reasoning step by step, then state the final answer clearly.{{end}}
`))

const (
	SystemResearch = "You are a meticulous research assistant for university students. Be accurate and cite nothing you cannot verify."
	SystemWriter   = "You are an academic writing assistant. Write clear, well-structured prose in markdown."
	SystemCareer   = "You are a career coach who writes concise, truthful application material."
	SystemData     = "You are a data analyst. Base every statement on the provided data."
	SystemField    = "You are a field scientist helping students document field trips."
	SystemTutor    = "You are a patient tutor. Explain the method, not only the answer."
)

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt failed: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func clamp(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
