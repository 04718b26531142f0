package gemini

import (
	"context"
	"errors"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// instruction is the fixed domain prompt for the inventory assistant. The
// model must answer with a single JSON object and nothing else.
const instruction = `You are the command parser of a voice-driven inventory assistant.

IMPORTANT: Return ONLY valid JSON, nothing else.

Format:
{
  "action": "add",
  "item": "espresso beans",
  "quantity": {"value": 10, "unit": "bags"},
  "recipient": "",
  "notes": "",
  "confidence": 0.95
}

Rules:
- action: one of "add", "remove", "update", "check", "report", "email", "alert", "unknown"
- item: the inventory item the command refers to, empty if none
- quantity: numeric value plus unit string ("5 bags" -> value 5, unit "bags"); omit when the utterance has no quantity
- recipient: email address or recipient name, only for "email" and "alert"
- notes: remaining free text worth keeping
- Use "unknown" when the utterance is not an inventory command

Example input: "add 10 bags of espresso beans"
Example output: {"action":"add","item":"espresso beans","quantity":{"value":10,"unit":"bags"},"confidence":0.95}`

type IGemini interface {
	InterpretCommand(ctx context.Context, transcript string) (string, error)
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}, nil
}

// InterpretCommand sends the finalized transcript together with the fixed
// instruction set and returns the model's raw JSON answer.
func (g *geminiClient) InterpretCommand(ctx context.Context, transcript string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.ResponseMIMEType = "application/json"

	res, err := model.GenerateContent(ctx, genai.Text(instruction), genai.Text("Input: "+transcript))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	response := res.Candidates[0].Content.Parts[0]
	text, ok := response.(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
