package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCannedQuestions(t *testing.T) {
	e := NewEngine(context.Background(), "", "")

	questions := e.GenerateQuestions(context.Background(), "sleep")
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Text)
		assert.Len(t, q.Options, 3)
	}
}

func TestEngineCannedRecommendation(t *testing.T) {
	e := NewEngine(context.Background(), "", "")

	rec := e.Analyze(context.Background(), []Answer{
		{QuestionID: "q1", Response: "6 to 8"},
	}, []string{"QmHash"})
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.Summary)
	assert.NotEmpty(t, rec.Suggestions)
}
