package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"bureau/pkg/domain"
)

// stylePrompts prefixes the user prompt with fabrication-style directions.
var stylePrompts = map[domain.ImageStyle]string{
	domain.StyleLeakedPhoto:  "Style: Grainy, slightly blurry surveillance camera photograph with realistic lighting. Low resolution, authentic documentary style. ",
	domain.StyleNewspaper:    "Style: High-quality photojournalistic image suitable for a newspaper front page. Clear, dramatic, newsworthy composition. ",
	domain.StyleDeclassified: "Style: Official government document photograph. Clean, formal, archival quality. Looks like it belongs in a classified file. ",
	domain.StyleSatellite:    "Style: Aerial satellite imagery view. High altitude perspective, geographic/topographic detail visible. ",
}

// OpenAIImageClient fabricates evidence images via the OpenAI Images API.
type OpenAIImageClient struct {
	client openai.Client
	model  openai.ImageModel
}

// NewOpenAIImageClient constructs a client with the provided API key.
func NewOpenAIImageClient(apiKey, model string) (*OpenAIImageClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key required", ErrNotConfigured)
	}
	if strings.TrimSpace(model) == "" {
		model = string(openai.ImageModelDallE3)
	}
	return &OpenAIImageClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ImageModel(model),
	}, nil
}

// GenerateImage fabricates one image. Unknown styles fall back to the
// leaked-photo treatment, matching the selector default.
func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return ImageResult{}, fmt.Errorf("image prompt required")
	}
	prefix, ok := stylePrompts[style]
	if !ok {
		prefix = stylePrompts[domain.StyleLeakedPhoto]
	}
	fullPrompt := prefix + prompt + ". IMPORTANT: Do not include any text, words, or labels in the image."

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  fullPrompt,
		Model:   c.model,
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityStandard,
	})
	if err != nil {
		return ImageResult{}, fmt.Errorf("openai image request: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return ImageResult{}, fmt.Errorf("no image URL returned from openai")
	}
	return ImageResult{
		URL:           resp.Data[0].URL,
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}
