package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What is a derivative?", "Calculus I")

	assert.Contains(t, prompt, "professor with deep knowledge of Calculus I")
	assert.Contains(t, prompt, "step by step")
	assert.Contains(t, prompt, "complete and correct answer")
	assert.Contains(t, prompt, "formulas")
	assert.Contains(t, prompt, "Japanese")
	assert.Contains(t, prompt, "TeX")
	assert.Contains(t, prompt, "Markdown")
	assert.Contains(t, prompt, "What is a derivative?")

	assert.Equal(t, prompt, BuildPrompt("What is a derivative?", "Calculus I"))
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt("CS101"), "professor with deep knowledge of CS101")
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel("gemini")
	assert.NoError(t, err)
	assert.Equal(t, ModelGemini, m)

	m, err = ParseModel(" DeepSeek ")
	assert.NoError(t, err)
	assert.Equal(t, ModelDeepSeek, m)

	_, err = ParseModel("ollama")
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestModel_Names(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", ModelGemini.KeyName())
	assert.Equal(t, "DEEPSEEK_API_KEY", ModelDeepSeek.KeyName())
	assert.Equal(t, "Gemini", ModelGemini.DisplayName())
	assert.Equal(t, "DeepSeek", ModelDeepSeek.DisplayName())
}
