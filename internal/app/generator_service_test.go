package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"scholarforge/internal/ai"
	"scholarforge/internal/model"
	"scholarforge/internal/prompt"
)

func newGenerator(t *testing.T, g ai.Generator) *GeneratorService {
	return NewGeneratorService(g, time.Second, 1024, zaptest.NewLogger(t))
}

func TestGeneratorService_Theses(t *testing.T) {
	fg := &fakeGenerator{text: `{"theses":[{"statement":"S1","rationale":"R1"}]}`}
	svc := newGenerator(t, fg)

	got, err := svc.GenerateTheses(context.Background(), prompt.ThesisInput{Topic: "bees"})
	require.NoError(t, err)
	assert.Equal(t, []Thesis{{Statement: "S1", Rationale: "R1"}}, got)

	req := fg.last(t)
	assert.NotNil(t, req.Schema)
	assert.False(t, req.Search)
	assert.Equal(t, prompt.SystemResearch, req.System)
}

func TestGeneratorService_NoProvider(t *testing.T) {
	svc := newGenerator(t, nil)
	_, err := svc.GenerateTheses(context.Background(), prompt.ThesisInput{Topic: "bees"})
	assert.ErrorIs(t, err, ErrLLMConfig)
	_, err = svc.GenerateSlideImage(context.Background(), prompt.SlideImageInput{Prompt: "x"})
	assert.ErrorIs(t, err, ErrLLMConfig)
}

func TestGeneratorService_MalformedJSON(t *testing.T) {
	svc := newGenerator(t, &fakeGenerator{text: "Sure! Here are some theses."})
	_, err := svc.GenerateTheses(context.Background(), prompt.ThesisInput{Topic: "bees"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGeneratorService_ProviderError(t *testing.T) {
	svc := newGenerator(t, &fakeGenerator{err: errors.New("quota exceeded")})
	_, err := svc.RewriteText(context.Background(), prompt.RewriteInput{Text: "a", Instruction: "shorter"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGeneratorService_TimeoutCancelsCall(t *testing.T) {
	svc := NewGeneratorService(&fakeGenerator{block: true}, 20*time.Millisecond, 0, zaptest.NewLogger(t))

	start := time.Now()
	_, err := svc.WriteSection(context.Background(), prompt.SectionInput{SectionTitle: "Intro"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGeneratorService_SourcesUseSearch(t *testing.T) {
	fg := &fakeGenerator{
		text:  "- [Paper](https://p.example): relevant",
		cites: []ai.Citation{{Title: "Paper", URL: "https://p.example"}},
	}
	svc := newGenerator(t, fg)

	got, err := svc.FindSources(context.Background(), prompt.SourcesInput{Topic: "coral"})
	require.NoError(t, err)
	assert.Equal(t, []model.Citation{{Title: "Paper", URL: "https://p.example"}}, got.Citations)
	assert.True(t, fg.last(t).Search)
	assert.Nil(t, fg.last(t).Schema)
}

func TestGeneratorService_OutlineAssignsSectionIDs(t *testing.T) {
	fg := &fakeGenerator{text: `{"sections":[{"title":"Intro","type":"introduction","content":"c"},{"title":"End","type":"","content":""}]}`}
	svc := newGenerator(t, fg)

	got, err := svc.GenerateOutline(context.Background(), prompt.OutlineInput{Thesis: "t"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, "custom", got[1].Type)
}

func TestGeneratorService_AssignmentUsesThinkingBudget(t *testing.T) {
	fg := &fakeGenerator{text: "x = 2"}
	svc := newGenerator(t, fg)

	got, err := svc.SolveAssignment(context.Background(), prompt.AssignmentInput{Subject: "algebra", Question: "2x = 4"})
	require.NoError(t, err)
	assert.Equal(t, "x = 2", got.Text)
	assert.Equal(t, 1024, fg.last(t).ThinkingBudget)
}

func TestGeneratorService_AnalyzeDataValidatesCSV(t *testing.T) {
	fg := &fakeGenerator{text: `{"summary":"ok","insights":["i"],"statistics":[{"name":"mean","value":"2"}],"chart_suggestion":"bar"}`}
	svc := newGenerator(t, fg)

	_, err := svc.AnalyzeData(context.Background(), "a,b\n1", "mean?")
	assert.ErrorIs(t, err, ErrInvalidCSV)
	assert.Empty(t, fg.requests)

	got, err := svc.AnalyzeData(context.Background(), "a,b\n1,2\n3,4", "mean?")
	require.NoError(t, err)
	assert.Equal(t, "bar", got.ChartSuggestion)
	assert.Contains(t, fg.last(t).Prompt, "2 rows, columns: a, b")
}

func TestGeneratorService_IdentifySpecimen(t *testing.T) {
	fg := &fakeGenerator{text: `{"common_name":"Oak","scientific_name":"Quercus robur","confidence":0.8,"description":"lobed"}`}
	svc := newGenerator(t, fg)

	_, err := svc.IdentifySpecimen(context.Background(), SpecimenInput{Photo: []byte("x"), MIMEType: "text/plain"})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	got, err := svc.IdentifySpecimen(context.Background(), SpecimenInput{Photo: []byte{1, 2}, MIMEType: "image/jpeg", Hint: "leaf"})
	require.NoError(t, err)
	assert.Equal(t, "Quercus robur", got.ScientificName)
	require.Len(t, fg.last(t).Attachments, 1)
	assert.Equal(t, "image/jpeg", fg.last(t).Attachments[0].MIMEType)
}

func TestGeneratorService_SummarizeRejectsNonPDF(t *testing.T) {
	svc := newGenerator(t, &fakeGenerator{text: "summary"})
	_, err := svc.SummarizeSource(context.Background(), SummarizeInput{Document: []byte("plain text file")})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	got, err := svc.SummarizeSource(context.Background(), SummarizeInput{Text: "pasted article"})
	require.NoError(t, err)
	assert.Equal(t, "summary", got.Text)
}

func TestGeneratorService_SlideImage(t *testing.T) {
	svc := newGenerator(t, &fakeGenerator{image: &ai.Image{Data: []byte{9}, MIMEType: "image/png"}})
	img, err := svc.GenerateSlideImage(context.Background(), prompt.SlideImageInput{Prompt: "cell"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestGeneratorService_InputValidation(t *testing.T) {
	svc := newGenerator(t, &fakeGenerator{text: "x"})
	ctx := context.Background()

	_, err := svc.GenerateCV(ctx, prompt.CVInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GenerateCoverLetter(ctx, prompt.CoverLetterInput{Company: "Acme"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.WriteFieldReport(ctx, FieldReportInput{Trip: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GeneratePresentation(ctx, prompt.PresentationInput{Topic: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
