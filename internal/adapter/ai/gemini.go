package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

const (
	defaultModel        = "gemini-2.5-flash"
	summaryInputLimit   = 30000
	quizInputLimit      = 25000
	summaryTemperature  = 0.3
	fallbackSummaryText = "Could not generate summary."
)

var (
	_ usecase.Summarizer    = (*Gemini)(nil)
	_ usecase.QuizGenerator = (*Gemini)(nil)
)

// request is one prompt plus the generation settings it needs.
type request struct {
	Prompt      string
	Temperature *float32
	Schema      *genai.Schema
}

// Gemini produces summaries and quizzes with the Gemini API.
type Gemini struct {
	apiKey    string
	modelName string
	logger    logrus.FieldLogger

	mu     sync.Mutex
	client *genai.Client

	generate func(ctx context.Context, req request) (string, error)
}

// NewGemini returns a generator. The client is created on first use, so a
// missing key only fails the calls that need the API.
func NewGemini(apiKey, modelName string, logger logrus.FieldLogger) *Gemini {
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}
	g := &Gemini{
		apiKey:    strings.TrimSpace(apiKey),
		modelName: modelName,
		logger:    logger.WithField("component", "gemini"),
	}
	g.generate = g.generateContent
	return g
}

func (g *Gemini) Summarize(ctx context.Context, text string, lang entity.Language) (string, error) {
	temperature := float32(summaryTemperature)
	out, err := g.generate(ctx, request{
		Prompt:      summaryPrompt(text, lang),
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	if out = strings.TrimSpace(out); out == "" {
		return fallbackSummaryText, nil
	}
	return out, nil
}

func (g *Gemini) GenerateQuiz(ctx context.Context, text string, lang entity.Language) ([]entity.QuizQuestion, error) {
	out, err := g.generate(ctx, request{
		Prompt: quizPrompt(text, lang),
		Schema: quizSchema(),
	})
	if err != nil {
		return nil, err
	}
	questions, err := parseQuiz(out)
	if err != nil {
		g.logger.WithError(err).Warn("failed to parse quiz JSON")
		return []entity.QuizQuestion{}, nil
	}
	return questions, nil
}

// Close releases the API client if one was created.
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func (g *Gemini) clientFor(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, entity.ErrMissingAPIKey
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) generateContent(ctx context.Context, req request) (string, error) {
	client, err := g.clientFor(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(g.modelName)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.Schema
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func summaryPrompt(text string, lang entity.Language) string {
	instruction := "Write the summary in clear, professional English."
	if lang == entity.LanguageSinhala {
		instruction = "IMPORTANT: You MUST write the entire summary in Sinhala (සිංහල) script only. Do not use English words unless they are technical terms."
	}
	return fmt.Sprintf(`Provide a concise, high-quality summary (5-7 sentences) of the following text.
Capture the main ideas, key arguments, and conclusions.
%s

Text to summarize: %s`, instruction, truncateRunes(text, summaryInputLimit))
}

func quizPrompt(text string, lang entity.Language) string {
	instruction := "The quiz content must be in English."
	if lang == entity.LanguageSinhala {
		instruction = "IMPORTANT: The 'question', 'options', and 'correctAnswer' values MUST be written in Sinhala (සිංහල) script. Ensure the JSON structure is preserved exactly."
	}
	return fmt.Sprintf(`Generate a quiz based on the text provided.
Create 5 multiple-choice questions.
%s
Return the response in JSON format.

Text context: %s`, instruction, truncateRunes(text, quizInputLimit))
}

func quizSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":            str,
				"question":      str,
				"options":       {Type: genai.TypeArray, Items: str},
				"correctAnswer": str,
				"type":          {Type: genai.TypeString, Enum: []string{string(entity.QuestionMultipleChoice)}},
			},
			Required: []string{"id", "question", "options", "correctAnswer", "type"},
		},
	}
}

func parseQuiz(raw string) ([]entity.QuizQuestion, error) {
	cleaned := cleanModelOutput(raw)
	if cleaned == "" {
		return []entity.QuizQuestion{}, nil
	}
	var questions []entity.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].Type == "" {
			questions[i].Type = entity.QuestionMultipleChoice
		}
		if questions[i].ID == "" {
			questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return questions, nil
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
