package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ken2664/llm-question-app/internal/llm"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func askRouter(answerer Answerer) *gin.Engine {
	logger := quietLogger()
	r := gin.New()
	r.Use(Recovery(logger))
	r.Any("/api/ask", NewAskHandler(answerer, logger).HandleAsk)
	return r
}

func postAsk(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, hasAnswer := body["answer"]
	assert.False(t, hasAnswer)
	return body["error"]
}

type answererFunc func(ctx context.Context, req llm.AnswerRequest) (string, error)

func (f answererFunc) Answer(ctx context.Context, req llm.AnswerRequest) (string, error) {
	return f(ctx, req)
}

type blockingProvider struct {
	block chan struct{}
}

func (p blockingProvider) Name() string { return "Gemini" }
func (p blockingProvider) Generate(context.Context, string, string) (string, error) {
	<-p.block
	return "late", nil
}

type fixedResolver struct {
	provider llm.Provider
}

func (r fixedResolver) Resolve(llm.Model) (llm.Provider, error) { return r.provider, nil }

func TestAsk_GeminiAnswer(t *testing.T) {
	var calls int32
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"A derivative measures..."}]}}]}`)
	}))
	defer gemini.Close()

	factory := llm.NewFactory(llm.FactoryConfig{
		Gemini:        llm.Settings{APIKey: "key", BaseURL: gemini.URL, Model: "gemini-1.5-flash"},
		ClientTimeout: time.Second,
	}, quietLogger())
	r := askRouter(llm.NewAnswerService(factory, 2*time.Second, quietLogger()))

	w := postAsk(r, `{"question":"What is a derivative?","model":"gemini","courseName":"Calculus I"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"A derivative measures..."}`, w.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAsk_MissingDeepSeekKey(t *testing.T) {
	factory := llm.NewFactory(llm.FactoryConfig{
		Gemini:        llm.Settings{APIKey: "key", BaseURL: "http://127.0.0.1:1"},
		ClientTimeout: time.Second,
	}, quietLogger())
	r := askRouter(llm.NewAnswerService(factory, time.Second, quietLogger()))

	w := postAsk(r, `{"question":"Explain recursion","model":"deepseek","courseName":"CS101"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DEEPSEEK_API_KEY is not set", decodeError(t, w))
}

func TestAsk_MissingFields(t *testing.T) {
	called := false
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		called = true
		return "x", nil
	}))

	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{"missing question", `{"model":"gemini","courseName":"Physics"}`, []string{"question"}},
		{"blank question", `{"question":"   ","model":"gemini","courseName":"Physics"}`, []string{"question"}},
		{"missing model", `{"question":"q","courseName":"Physics"}`, []string{"model"}},
		{"missing course", `{"question":"q","model":"deepseek"}`, []string{"courseName"}},
		{"empty object", `{}`, []string{"question", "model", "courseName"}},
		{"empty body", ``, []string{"question", "model", "courseName"}},
		{"missing fields with unknown model", `{"model":"ollama","courseName":""}`, []string{"question", "courseName"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAsk(r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			msg := decodeError(t, w)
			assert.NotEmpty(t, msg)
			assert.NotContains(t, msg, "unsupported model")
			for _, field := range tt.missing {
				assert.Contains(t, msg, field)
			}
		})
	}
	assert.False(t, called)
}

func TestAsk_InvalidInput(t *testing.T) {
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		t.Fatal("provider must not be called")
		return "", nil
	}))

	w := postAsk(r, `{"question":"q","model":"ollama","courseName":"c"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `unsupported model "ollama": expected one of gemini, deepseek`, decodeError(t, w))

	w = postAsk(r, `{"question":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "invalid request body")

	w = postAsk(r, `{"question":"q","model":"gemini","courseName":"c","courseId":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsk_OptionalFieldsIgnored(t *testing.T) {
	var got llm.AnswerRequest
	r := askRouter(answererFunc(func(_ context.Context, req llm.AnswerRequest) (string, error) {
		got = req
		return "ok", nil
	}))

	w := postAsk(r, `{"question":" q ","model":"deepseek","courseName":"CS101","lectureDate":"2024-04-10","courseId":3,"facultyId":null}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, llm.AnswerRequest{Question: "q", CourseName: "CS101", Model: llm.ModelDeepSeek}, got)
}

func TestAsk_ModelCaseInsensitive(t *testing.T) {
	var got llm.AnswerRequest
	r := askRouter(answererFunc(func(_ context.Context, req llm.AnswerRequest) (string, error) {
		got = req
		return "ok", nil
	}))

	w := postAsk(r, `{"question":"q","model":"Gemini","courseName":"Physics"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, llm.ModelGemini, got.Model)
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		return "", nil
	}))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/api/ask", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "POST", w.Header().Get("Allow"))
		assert.Equal(t, "Method "+method+" Not Allowed", w.Body.String())
	}
}

func TestAsk_Timeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	service := llm.NewAnswerService(fixedResolver{provider: blockingProvider{block: block}}, 50*time.Millisecond, quietLogger())
	r := askRouter(service)

	start := time.Now()
	w := postAsk(r, `{"question":"q","model":"gemini","courseName":"c"}`)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	msg := decodeError(t, w)
	assert.Contains(t, msg, "timed out")
	assert.True(t, strings.HasPrefix(msg, "Gemini"))
}

func TestAsk_EmptyProviderResponse(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	}))
	defer gemini.Close()

	factory := llm.NewFactory(llm.FactoryConfig{
		Gemini:        llm.Settings{APIKey: "key", BaseURL: gemini.URL, Model: "m"},
		ClientTimeout: time.Second,
	}, quietLogger())
	r := askRouter(llm.NewAnswerService(factory, 2*time.Second, quietLogger()))

	w := postAsk(r, `{"question":"q","model":"gemini","courseName":"c"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Gemini API error: empty response from provider", decodeError(t, w))
}

func TestAsk_UnexpectedErrors(t *testing.T) {
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		return "", errors.New("")
	}))
	w := postAsk(r, `{"question":"q","model":"gemini","courseName":"c"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decodeError(t, w))

	r = askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		panic("boom")
	}))
	w = postAsk(r, `{"question":"q","model":"gemini","courseName":"c"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", decodeError(t, w))
}

func TestAsk_AnswerUnmodified(t *testing.T) {
	answer := "Use $\\frac{d}{dx}x^2 = 2x$ <b>bold</b> & more\n\n## 日本語の見出し"
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		return answer, nil
	}))

	w := postAsk(r, `{"question":"q","model":"gemini","courseName":"c"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"answer": answer}, body)
	assert.Contains(t, w.Body.String(), "<b>bold</b> & more")
}

func TestAsk_NoHiddenCaching(t *testing.T) {
	var calls int32
	r := askRouter(answererFunc(func(context.Context, llm.AnswerRequest) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "deterministic", nil
	}))

	body := `{"question":"q","model":"gemini","courseName":"c"}`
	first := postAsk(r, body)
	second := postAsk(r, body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
