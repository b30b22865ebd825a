package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// RecipeGenerator turns a fridge photo into the model's raw recipe answer.
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, image []byte, mimeType string) (string, error)
}

type GeminiRecipeGenerator struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiRecipeGenerator allows perMinute model calls per minute across the process.
func NewGeminiRecipeGenerator(ctx context.Context, apiKey, model string, perMinute int) (*GeminiRecipeGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if perMinute <= 0 {
		perMinute = AIRateLimit
	}
	return &GeminiRecipeGenerator{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), 2),
	}, nil
}

func (g *GeminiRecipeGenerator) Close() error {
	return g.client.Close()
}

const recipePrompt = `You are a chef helping someone cook with what is already in their fridge.
Look at this photo and identify the food items you can see.

Suggest up to 3 recipes that mainly use those items. Prefer items that spoil soon
(fresh produce, dairy, cooked leftovers). Basic pantry staples (salt, pepper, oil,
water) may be assumed.

Return ONLY valid JSON in this format:
[
  {
    "name": "string",
    "ingredients": ["quantity unit ingredient", "..."],
    "steps": ["step", "..."],
    "time": number
  }
]

Rules:
- "time" is the total preparation and cooking time in minutes.
- If no food is visible, return [].
- Do not include markdown formatting, code blocks, or additional text. Only return raw JSON.`

func (g *GeminiRecipeGenerator) GenerateRecipes(ctx context.Context, image []byte, mimeType string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for model rate limit: %w", err)
	}

	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	format := strings.TrimPrefix(mimeType, "image/")
	resp, err := model.GenerateContent(ctx, genai.Text(recipePrompt), genai.ImageData(format, image))
	if err != nil {
		zap.L().Error("Gemini recipe generation failed", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			text.WriteString(string(textPart))
		}
	}
	return text.String(), nil
}
