package prompt

import "strings"

type ThesisInput struct {
	Topic string
	Field string
	Level string
	Count int
}

func Theses(in ThesisInput) (string, error) {
	in.Count = clamp(in.Count, DefaultThesisCount, MaxThesisCount)
	return render("theses", in)
}

type OutlineInput struct {
	Thesis string
	Field  string
}

func Outline(in OutlineInput) (string, error) { return render("outline", in) }

type SourcesInput struct {
	Topic string
	Count int
}

func Sources(in SourcesInput) (string, error) {
	in.Count = clamp(in.Count, DefaultThesisCount, MaxThesisCount)
	return render("sources", in)
}

type SummaryInput struct {
	Title string
	Focus string
	Text  string
}

func Summary(in SummaryInput) (string, error) { return render("summary", in) }

type SectionInput struct {
	DocumentTitle string
	SectionTitle  string
	Notes         string
	Tone          string
}

func Section(in SectionInput) (string, error) { return render("section", in) }

type RewriteInput struct {
	Text        string
	Instruction string
}

func Rewrite(in RewriteInput) (string, error) { return render("rewrite", in) }

type ReportInput struct {
	Kind    string
	Title   string
	Details string
}

func Report(in ReportInput) (string, error) {
	if in.Kind == "" {
		in.Kind = "lab"
	}
	return render("report", in)
}

type CVInput struct {
	Name       string
	Email      string
	Phone      string
	TargetRole string
	Education  string
	Experience string
	Skills     []string
}

func CV(in CVInput) (string, error) { return render("cv", in) }

type CoverLetterInput struct {
	Name           string
	Company        string
	JobDescription string
	CVSummary      string
}

func CoverLetter(in CoverLetterInput) (string, error) { return render("cover_letter", in) }

type PresentationInput struct {
	Topic    string
	Audience string
	Slides   int
}

func Presentation(in PresentationInput) (string, error) {
	in.Slides = clamp(in.Slides, DefaultSlideCount, MaxSlideCount)
	return render("presentation", in)
}

type SlideImageInput struct {
	Prompt string
	Style  string
}

func SlideImage(in SlideImageInput) (string, error) { return render("slide_image", in) }

type DataInput struct {
	Question  string
	Columns   []string
	Rows      int
	CSV       string
	Truncated bool
}

func Data(in DataInput) (string, error) { return render("data", in) }

type FieldReportInput struct {
	Trip         string
	Observations []string
	Table        string
}

func FieldReport(in FieldReportInput) (string, error) { return render("field_report", in) }

type SpecimenInput struct {
	Hint string
}

func Specimen(in SpecimenInput) (string, error) { return render("specimen", in) }

type AssignmentInput struct {
	Subject  string
	Question string
	Level    string
}

func Assignment(in AssignmentInput) (string, error) { return render("assignment", in) }

// MarkdownTable renders a header row and data rows as a markdown table.
func MarkdownTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", "\\|")
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}
