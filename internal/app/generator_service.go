package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"scholarforge/internal/ai"
	"scholarforge/internal/model"
	"scholarforge/internal/pkg/pdfextract"
	"scholarforge/internal/prompt"
)

var (
	ErrLLMConfig        = errors.New("llm config is invalid")
	ErrGenerationFailed = errors.New("generation failed")
	ErrInvalidCSV       = errors.New("invalid csv data")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

const (
	maxSourceChars = 60000
	maxPromptInput = 20000
)

type GeneratorService struct {
	gen            ai.Generator
	timeout        time.Duration
	thinkingBudget int
	logger         *zap.Logger
}

type Thesis struct {
	Statement string `json:"statement"`
	Rationale string `json:"rationale"`
}

type TextResult struct {
	Text      string           `json:"text"`
	Citations []model.Citation `json:"citations,omitempty"`
}

type CVEntry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Period       string   `json:"period"`
	Highlights   []string `json:"highlights"`
}

type CV struct {
	Name       string    `json:"name"`
	Headline   string    `json:"headline"`
	Summary    string    `json:"summary"`
	Experience []CVEntry `json:"experience"`
	Education  []CVEntry `json:"education"`
	Skills     []string  `json:"skills"`
}

type Slide struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"`
	SpeakerNotes string   `json:"speaker_notes"`
	ImagePrompt  string   `json:"image_prompt"`
}

type Statistic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DataAnalysis struct {
	Summary         string      `json:"summary"`
	Insights        []string    `json:"insights"`
	Statistics      []Statistic `json:"statistics"`
	ChartSuggestion string      `json:"chart_suggestion"`
}

type SpecimenID struct {
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	Confidence     float64 `json:"confidence"`
	Description    string  `json:"description"`
}

type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

type SummarizeInput struct {
	Title    string
	Focus    string
	Text     string
	Document []byte
}

type FieldReportInput struct {
	Trip         string
	Observations []string
	Headers      []string
	Rows         [][]string
}

type SpecimenInput struct {
	Photo    []byte
	MIMEType string
	Hint     string
}

// NewGeneratorService accepts a nil generator; every call then fails with
// ErrLLMConfig.
func NewGeneratorService(gen ai.Generator, timeout time.Duration, thinkingBudget int, logger *zap.Logger) *GeneratorService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeneratorService{
		gen:            gen,
		timeout:        timeout,
		thinkingBudget: thinkingBudget,
		logger:         logger,
	}
}

var (
	thesisSchema = ai.Object(map[string]*ai.Schema{
		"theses": ai.ArrayOf(ai.Object(map[string]*ai.Schema{
			"statement": ai.String("the thesis statement"),
			"rationale": ai.String("why the thesis is researchable"),
		}, "statement", "rationale")),
	}, "theses")

	sectionListSchema = ai.Object(map[string]*ai.Schema{
		"sections": ai.ArrayOf(ai.Object(map[string]*ai.Schema{
			"title":   ai.String(""),
			"type":    ai.String("section role"),
			"content": ai.String("markdown body"),
		}, "title", "type", "content")),
	}, "sections")

	cvEntrySchema = ai.Object(map[string]*ai.Schema{
		"title":        ai.String(""),
		"organization": ai.String(""),
		"period":       ai.String(""),
		"highlights":   ai.ArrayOf(ai.String("")),
	}, "title", "organization", "period", "highlights")

	cvSchema = ai.Object(map[string]*ai.Schema{
		"name":       ai.String(""),
		"headline":   ai.String(""),
		"summary":    ai.String(""),
		"experience": ai.ArrayOf(cvEntrySchema),
		"education":  ai.ArrayOf(cvEntrySchema),
		"skills":     ai.ArrayOf(ai.String("")),
	}, "name", "headline", "summary", "experience", "education", "skills")

	slidesSchema = ai.Object(map[string]*ai.Schema{
		"slides": ai.ArrayOf(ai.Object(map[string]*ai.Schema{
			"title":         ai.String(""),
			"bullets":       ai.ArrayOf(ai.String("")),
			"speaker_notes": ai.String(""),
			"image_prompt":  ai.String(""),
		}, "title", "bullets", "speaker_notes", "image_prompt")),
	}, "slides")

	dataSchema = ai.Object(map[string]*ai.Schema{
		"summary":  ai.String(""),
		"insights": ai.ArrayOf(ai.String("")),
		"statistics": ai.ArrayOf(ai.Object(map[string]*ai.Schema{
			"name":  ai.String(""),
			"value": ai.String(""),
		}, "name", "value")),
		"chart_suggestion": ai.String(""),
	}, "summary", "insights", "statistics", "chart_suggestion")

	specimenSchema = ai.Object(map[string]*ai.Schema{
		"common_name":     ai.String(""),
		"scientific_name": ai.String(""),
		"confidence":      ai.Number("between 0 and 1"),
		"description":     ai.String(""),
	}, "common_name", "scientific_name", "confidence", "description")
)

func (s *GeneratorService) GenerateTheses(ctx context.Context, in prompt.ThesisInput) ([]Thesis, error) {
	if blank(in.Topic) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.Theses(in)
	if err != nil {
		return nil, err
	}
	var out struct {
		Theses []Thesis `json:"theses"`
	}
	if err := s.generateJSON(ctx, "theses", ai.Request{System: prompt.SystemResearch, Prompt: p, Schema: thesisSchema}, &out); err != nil {
		return nil, err
	}
	return out.Theses, nil
}

func (s *GeneratorService) GenerateOutline(ctx context.Context, in prompt.OutlineInput) ([]model.Section, error) {
	if blank(in.Thesis) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.Outline(in)
	if err != nil {
		return nil, err
	}
	return s.generateSections(ctx, "outline", ai.Request{System: prompt.SystemResearch, Prompt: p, Schema: sectionListSchema})
}

func (s *GeneratorService) FindSources(ctx context.Context, in prompt.SourcesInput) (*TextResult, error) {
	if blank(in.Topic) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.Sources(in)
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "sources", ai.Request{System: prompt.SystemResearch, Prompt: p, Search: true})
}

// SummarizeSource summarizes pasted text or an uploaded PDF. PDF text is
// extracted locally so any provider can handle it.
func (s *GeneratorService) SummarizeSource(ctx context.Context, in SummarizeInput) (*TextResult, error) {
	text := strings.TrimSpace(in.Text)
	if len(in.Document) > 0 {
		extracted, err := pdfextract.ExtractText(in.Document, maxSourceChars)
		if err != nil {
			if errors.Is(err, pdfextract.ErrNotPDF) {
				return nil, ErrUnsupportedMedia
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		text = extracted
	}
	if text == "" {
		return nil, ErrInvalidInput
	}
	p, err := prompt.Summary(prompt.SummaryInput{Title: in.Title, Focus: in.Focus, Text: truncate(text, maxSourceChars)})
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "summarize", ai.Request{System: prompt.SystemResearch, Prompt: p})
}

func (s *GeneratorService) WriteSection(ctx context.Context, in prompt.SectionInput) (*TextResult, error) {
	if blank(in.SectionTitle) {
		return nil, ErrInvalidInput
	}
	in.Notes = truncate(in.Notes, maxPromptInput)
	p, err := prompt.Section(in)
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "section", ai.Request{System: prompt.SystemWriter, Prompt: p})
}

func (s *GeneratorService) RewriteText(ctx context.Context, in prompt.RewriteInput) (*TextResult, error) {
	if blank(in.Text) || blank(in.Instruction) {
		return nil, ErrInvalidInput
	}
	in.Text = truncate(in.Text, maxPromptInput)
	p, err := prompt.Rewrite(in)
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "rewrite", ai.Request{System: prompt.SystemWriter, Prompt: p})
}

func (s *GeneratorService) GenerateReport(ctx context.Context, in prompt.ReportInput) ([]model.Section, error) {
	if blank(in.Title) {
		return nil, ErrInvalidInput
	}
	in.Details = truncate(in.Details, maxPromptInput)
	p, err := prompt.Report(in)
	if err != nil {
		return nil, err
	}
	return s.generateSections(ctx, "report", ai.Request{System: prompt.SystemWriter, Prompt: p, Schema: sectionListSchema})
}

func (s *GeneratorService) GenerateCV(ctx context.Context, in prompt.CVInput) (*CV, error) {
	if blank(in.Name) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.CV(in)
	if err != nil {
		return nil, err
	}
	var out CV
	if err := s.generateJSON(ctx, "cv", ai.Request{System: prompt.SystemCareer, Prompt: p, Schema: cvSchema}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) GenerateCoverLetter(ctx context.Context, in prompt.CoverLetterInput) (*TextResult, error) {
	if blank(in.Company) || blank(in.JobDescription) {
		return nil, ErrInvalidInput
	}
	in.JobDescription = truncate(in.JobDescription, maxPromptInput)
	p, err := prompt.CoverLetter(in)
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "cover_letter", ai.Request{System: prompt.SystemCareer, Prompt: p})
}

func (s *GeneratorService) GeneratePresentation(ctx context.Context, in prompt.PresentationInput) ([]Slide, error) {
	if blank(in.Topic) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.Presentation(in)
	if err != nil {
		return nil, err
	}
	var out struct {
		Slides []Slide `json:"slides"`
	}
	if err := s.generateJSON(ctx, "presentation", ai.Request{System: prompt.SystemCareer, Prompt: p, Schema: slidesSchema}, &out); err != nil {
		return nil, err
	}
	return out.Slides, nil
}

func (s *GeneratorService) GenerateSlideImage(ctx context.Context, in prompt.SlideImageInput) (*GeneratedImage, error) {
	if blank(in.Prompt) {
		return nil, ErrInvalidInput
	}
	if s.gen == nil {
		return nil, ErrLLMConfig
	}
	p, err := prompt.SlideImage(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	img, err := s.gen.GenerateImage(ctx, p)
	if err != nil {
		return nil, s.fail("slide_image", err)
	}
	return &GeneratedImage{Data: img.Data, MIMEType: img.MIMEType}, nil
}

func (s *GeneratorService) AnalyzeData(ctx context.Context, csvText, question string) (*DataAnalysis, error) {
	if blank(question) {
		return nil, ErrInvalidInput
	}
	table, err := parseCSV(csvText)
	if err != nil {
		return nil, err
	}
	p, err := prompt.Data(prompt.DataInput{
		Question:  question,
		Columns:   table.header,
		Rows:      table.rows,
		CSV:       table.sample,
		Truncated: table.truncated,
	})
	if err != nil {
		return nil, err
	}
	var out DataAnalysis
	if err := s.generateJSON(ctx, "data_analysis", ai.Request{System: prompt.SystemData, Prompt: p, Schema: dataSchema}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) WriteFieldReport(ctx context.Context, in FieldReportInput) (*TextResult, error) {
	if blank(in.Trip) || (len(in.Observations) == 0 && len(in.Rows) == 0) {
		return nil, ErrInvalidInput
	}
	p, err := prompt.FieldReport(prompt.FieldReportInput{
		Trip:         in.Trip,
		Observations: in.Observations,
		Table:        prompt.MarkdownTable(in.Headers, in.Rows),
	})
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "field_report", ai.Request{System: prompt.SystemField, Prompt: p})
}

func (s *GeneratorService) IdentifySpecimen(ctx context.Context, in SpecimenInput) (*SpecimenID, error) {
	if len(in.Photo) == 0 {
		return nil, ErrInvalidInput
	}
	if !strings.HasPrefix(in.MIMEType, "image/") {
		return nil, ErrUnsupportedMedia
	}
	p, err := prompt.Specimen(prompt.SpecimenInput{Hint: in.Hint})
	if err != nil {
		return nil, err
	}
	var out SpecimenID
	req := ai.Request{
		System:      prompt.SystemField,
		Prompt:      p,
		Schema:      specimenSchema,
		Attachments: []ai.Attachment{{MIMEType: in.MIMEType, Data: in.Photo}},
	}
	if err := s.generateJSON(ctx, "specimen", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GeneratorService) SolveAssignment(ctx context.Context, in prompt.AssignmentInput) (*TextResult, error) {
	if blank(in.Subject) || blank(in.Question) {
		return nil, ErrInvalidInput
	}
	in.Question = truncate(in.Question, maxPromptInput)
	p, err := prompt.Assignment(in)
	if err != nil {
		return nil, err
	}
	return s.generateText(ctx, "assignment", ai.Request{
		System:         prompt.SystemTutor,
		Prompt:         p,
		ThinkingBudget: s.thinkingBudget,
	})
}

func (s *GeneratorService) generateText(ctx context.Context, feature string, req ai.Request) (*TextResult, error) {
	resp, err := s.call(ctx, feature, req)
	if err != nil {
		return nil, err
	}
	result := &TextResult{Text: resp.Text}
	for _, c := range resp.Citations {
		result.Citations = append(result.Citations, model.Citation{Title: c.Title, URL: c.URL})
	}
	return result, nil
}

func (s *GeneratorService) generateJSON(ctx context.Context, feature string, req ai.Request, out interface{}) error {
	resp, err := s.call(ctx, feature, req)
	if err != nil {
		return err
	}
	if err := ai.DecodeJSON(resp.Text, out); err != nil {
		return s.fail(feature, err)
	}
	return nil
}

func (s *GeneratorService) generateSections(ctx context.Context, feature string, req ai.Request) ([]model.Section, error) {
	var out struct {
		Sections []model.Section `json:"sections"`
	}
	if err := s.generateJSON(ctx, feature, req, &out); err != nil {
		return nil, err
	}
	sections := make([]model.Section, 0, len(out.Sections))
	for _, sec := range out.Sections {
		sections = append(sections, newSection(sec.Title, sec.Type, sec.Content))
	}
	return sections, nil
}

func (s *GeneratorService) call(ctx context.Context, feature string, req ai.Request) (*ai.Response, error) {
	if s.gen == nil {
		return nil, ErrLLMConfig
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	resp, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, s.fail(feature, err)
	}
	s.logger.Debug("generation finished",
		zap.String("feature", feature),
		zap.String("model", resp.Model),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("chars", len(resp.Text)),
	)
	return resp, nil
}

// fail logs the provider error and folds it into ErrGenerationFailed,
// keeping deadline errors matchable.
func (s *GeneratorService) fail(feature string, err error) error {
	s.logger.Error("generation failed", zap.String("feature", feature), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, context.DeadlineExceeded)
	}
	if errors.Is(err, ai.ErrNotConfigured) {
		return ErrLLMConfig
	}
	return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
