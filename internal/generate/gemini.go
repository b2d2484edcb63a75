package generate

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/example/magicstudio/internal/imageio"
)

// DefaultModel is the Gemini image editing model.
const DefaultModel = "gemini-2.5-flash-image"

// fallbackKeyEnvs are consulted after the configured variable.
var fallbackKeyEnvs = []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}

// APIKey returns the first non-empty value among env and the fallback
// variables.
func APIKey(env string) (string, error) {
	names := fallbackKeyEnvs
	if env != "" {
		names = append([]string{env}, names...)
	}
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", ErrMissingAPIKey
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini calls the Gemini API.
type Gemini struct {
	model  string
	models contentGenerator
}

// GeminiOption configures a Gemini generator.
type GeminiOption func(*geminiConfig)

type geminiConfig struct {
	model     string
	apiKey    string
	apiKeyEnv string
}

// WithModel overrides DefaultModel.
func WithModel(m string) GeminiOption {
	return func(c *geminiConfig) {
		if m != "" {
			c.model = m
		}
	}
}

// WithAPIKey sets the key directly instead of reading the environment.
func WithAPIKey(k string) GeminiOption {
	return func(c *geminiConfig) { c.apiKey = k }
}

// WithAPIKeyEnv names the environment variable holding the key.
func WithAPIKeyEnv(name string) GeminiOption {
	return func(c *geminiConfig) { c.apiKeyEnv = name }
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, opts ...GeminiOption) (*Gemini, error) {
	cfg := geminiConfig{model: DefaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	key := cfg.apiKey
	if key == "" {
		var err error
		if key, err = APIKey(cfg.apiKeyEnv); err != nil {
			return nil, err
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{model: cfg.model, models: client.Models}, nil
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string { return g.model }

// Generate sends the source, mask and reference images followed by the
// prompt and returns the first inline image of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	parts := []*genai.Part{genai.NewPartFromBytes(req.Original.Data, req.Original.MIME)}
	if req.Mask != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Mask.Data, req.Mask.MIME))
	}
	if req.Reference != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Reference.Data, req.Reference.MIME))
	}
	parts = append(parts, genai.NewPartFromText(Prompt(req)))

	log.Printf("generate: model=%s images=%d", g.model, len(parts)-1)
	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resultFromResponse(resp)
}

func resultFromResponse(resp *genai.GenerateContentResponse) (*Result, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoResponse
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil, ErrNoImage
	}
	var text []string
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text = append(text, part.Text)
		}
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		img, _, err := imageio.Decode(bytes.NewReader(part.InlineData.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return &Result{Image: img, Text: strings.Join(text, "\n")}, nil
	}
	return nil, ErrNoImage
}
