package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultModel = "gemini-1.5-flash"

// GeminiBackend talks to the Gemini API directly. The relay endpoint uses
// it server-side; the direct chat mode uses it from the bridge itself.
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}
	return &GeminiBackend{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *GeminiBackend) Generate(ctx context.Context, messages []Message) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(Prompt(messages)))
	if err != nil {
		if isRateLimit(err) {
			return "", ErrRateLimited
		}
		return "", errors.Wrap(err, "gemini generate")
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	if b.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return b.String(), nil
}

func (g *GeminiBackend) Close() error { return g.client.Close() }

// isRateLimit recognizes quota errors from both the REST and gRPC
// transports.
func isRateLimit(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}
