package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// modelsAPI is the part of genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
}

type GeminiClient struct {
	models     modelsAPI
	model      string
	imageModel string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client failed: %w", err)
	}
	return &GeminiClient{
		models:     client.Models,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Search && req.Schema != nil {
		return nil, fmt.Errorf("%w: search grounding cannot be combined with a response schema", ErrUnsupported)
	}

	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = jsonMIMEType
		cfg.ResponseSchema = req.Schema.GenAI()
	}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.ThinkingBudget != 0 {
		budget := int32(req.ThinkingBudget)
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return &Response{
		Text:      text,
		Citations: groundingCitations(resp),
		Model:     c.model,
	}, nil
}

func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if c.imageModel == "" {
		return nil, ErrUnsupported
	}
	resp, err := c.models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generate failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, ErrEmptyResponse
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: img.ImageBytes, MIMEType: mime}, nil
}

func groundingCitations(resp *genai.GenerateContentResponse) []Citation {
	var out []Citation
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out = append(out, Citation{Title: chunk.Web.Title, URL: chunk.Web.URI})
		}
	}
	return dedupeCitations(out)
}
