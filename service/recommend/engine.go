package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// Question is one daily prompt shown to the user.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Answer pairs a question with the user's response.
type Answer struct {
	QuestionID string `json:"question_id"`
	Response   string `json:"response"`
}

// Recommendation is the structured output of an analysis run.
type Recommendation struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Engine wraps the remote model behind a fixed request/response contract
// with mandatory local fallbacks: a missing key or a failed remote call
// degrades to canned defaults, never to an error the caller must handle.
type Engine struct {
	client *genai.Client
	model  string
}

// NewEngine builds the engine. An empty apiKey leaves the engine in
// canned-only mode.
func NewEngine(ctx context.Context, apiKey, model string) *Engine {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	e := &Engine{model: model}
	if apiKey == "" {
		xzap.WithContext(ctx).Info("recommendation engine running with canned defaults, no api key configured")
		return e
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on create genai client, falling back to canned defaults",
			zap.Error(err))
		return e
	}
	e.client = client
	return e
}

// GenerateQuestions produces the daily question set for the given habit
// focus.
func (e *Engine) GenerateQuestions(ctx context.Context, focus string) []Question {
	if e.client == nil {
		return defaultQuestions()
	}

	prompt := fmt.Sprintf(`Generate 3 short daily lifestyle check-in questions for a user focused on %q.
Answer with a JSON array of objects, each with "text" and "options" (3 short choices).`, focus)

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on generate questions, using canned defaults", zap.Error(err))
		return defaultQuestions()
	}

	var parsed []struct {
		Text    string   `json:"text"`
		Options []string `json:"options"`
	}
	if err := json.Unmarshal([]byte(result.Text()), &parsed); err != nil || len(parsed) == 0 {
		xzap.WithContext(ctx).Warn("failed on parse generated questions, using canned defaults",
			zap.Error(err))
		return defaultQuestions()
	}

	questions := make([]Question, 0, len(parsed))
	for _, q := range parsed {
		questions = append(questions, Question{
			ID:      uuid.NewString(),
			Text:    q.Text,
			Options: q.Options,
		})
	}
	return questions
}

// Analyze turns the day's answers plus recent history into a structured
// recommendation.
func (e *Engine) Analyze(ctx context.Context, answers []Answer, history []string) *Recommendation {
	if e.client == nil {
		return defaultRecommendation()
	}

	var sb strings.Builder
	sb.WriteString("Today's answers:\n")
	for _, a := range answers {
		fmt.Fprintf(&sb, "- %s: %s\n", a.QuestionID, a.Response)
	}
	if len(history) > 0 {
		sb.WriteString("Recent check-in notes:\n")
		for _, h := range history {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
	}
	sb.WriteString(`Answer with a JSON object: {"summary": "...", "suggestions": ["...", "..."]}.`)

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(sb.String()),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on analyze answers, using canned recommendation", zap.Error(err))
		return defaultRecommendation()
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(result.Text()), &rec); err != nil || rec.Summary == "" {
		xzap.WithContext(ctx).Warn("failed on parse recommendation, using canned recommendation",
			zap.Error(err))
		return defaultRecommendation()
	}
	return &rec
}

func defaultQuestions() []Question {
	return []Question{
		{ID: uuid.NewString(), Text: "How many hours did you sleep last night?", Options: []string{"Less than 6", "6 to 8", "More than 8"}},
		{ID: uuid.NewString(), Text: "How much water have you had today?", Options: []string{"Barely any", "A few glasses", "Plenty"}},
		{ID: uuid.NewString(), Text: "Did you move your body today?", Options: []string{"Not yet", "A short walk", "A full workout"}},
	}
}

func defaultRecommendation() *Recommendation {
	return &Recommendation{
		Summary: "Keep your streak going with small, steady habits.",
		Suggestions: []string{
			"Drink a glass of water first thing tomorrow morning.",
			"Aim for a consistent bedtime tonight.",
			"Take a ten minute walk after your next meal.",
		},
	}
}
