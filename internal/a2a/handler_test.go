package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/icp-profiler/internal/models"
	"github.com/BerylCAtieno/icp-profiler/internal/profiler"
)

type stubAnalyzer struct {
	result *models.AnalysisResult
	err    error
	got    []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, desc string) (*models.AnalysisResult, error) {
	s.got = append(s.got, desc)
	return s.result, s.err
}

func sampleResult() *models.AnalysisResult {
	persona := func(role string, score float64) models.Persona {
		return models.Persona{
			ID:                 "persona-" + role,
			Role:               role,
			Industry:           "Software",
			CompanySize:        "50-200",
			PainPoints:         []string{"Standups eat focus time"},
			Motivations:        []string{"Ship faster"},
			PreferredChannels:  []string{"LinkedIn"},
			MarketingHook:      "Get your mornings back.",
			CompatibilityScore: score,
			Bio:                "Runs a distributed team.",
		}
	}
	return &models.AnalysisResult{
		Personas: []models.Persona{
			persona("Engineering Manager", 92),
			persona("Scrum Master", 64),
			persona("CTO", 70),
		},
		MarketOverview:    "Remote teams are growing.",
		SuggestedStrategy: "Lead with a Slack app listing.",
	}
}

func newRouter(analyzer Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewA2AHandler(analyzer, NewAgentCard("http://localhost:8080")).RegisterRoutes(r)
	return r
}

func post(t *testing.T, r http.Handler, body any) JSONRPCResponse {
	t.Helper()
	var raw []byte
	switch v := body.(type) {
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/a2a/profiler", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result"`
		Error   *JSONRPCError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	out := JSONRPCResponse{JSONRPC: resp.JSONRPC, ID: resp.ID, Error: resp.Error}
	if len(resp.Result) > 0 {
		var task TaskResult
		require.NoError(t, json.Unmarshal(resp.Result, &task))
		out.Result = task
	}
	return out
}

func rpcRequest(method string, parts ...MessagePart) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      "req-1",
		"method":  method,
		"params": MessageParams{
			Message: Message{Kind: "message", Role: RoleUser, Parts: parts},
		},
	}
}

func TestHandleProfilerMessageSend(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	r := newRouter(analyzer)

	resp := post(t, r, rpcRequest("message/send", TextPart("  A Slack standup bot  ")))

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `"req-1"`, string(resp.ID))
	assert.Equal(t, []string{"A Slack standup bot"}, analyzer.got)

	task := resp.Result.(TaskResult)
	assert.Equal(t, StateCompleted, task.Status.State)
	require.NotNil(t, task.Status.Message)
	require.NotNil(t, task.Status.Message.TaskID)
	assert.Equal(t, "req-1", *task.Status.Message.TaskID)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "## 1. Engineering Manager (Software)")
	require.Len(t, task.Artifacts, 1)
	require.Len(t, task.Artifacts[0].Parts, 2)
	assert.Equal(t, "data", task.Artifacts[0].Parts[1].Kind)

	var embedded models.AnalysisResult
	require.NoError(t, json.Unmarshal(task.Artifacts[0].Parts[1].Data, &embedded))
	assert.Len(t, embedded.Personas, models.PersonasPerAnalysis)
}

func TestHandleProfilerAgentTaskUsesHistory(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	r := newRouter(analyzer)

	history := DataPart([]MessagePart{
		TextPart("<p>A meal replacement shake for busy parents</p>"),
		TextPart("Generating profiles..."),
		TextPart("..."),
	})
	resp := post(t, r, rpcRequest("agent/task", history))

	require.Nil(t, resp.Error)
	assert.Equal(t, StateCompleted, resp.Result.(TaskResult).Status.State)
	assert.Equal(t, []string{"A meal replacement shake for busy parents"}, analyzer.got)
}

func TestHandleProfilerFailures(t *testing.T) {
	t.Run("missing description", func(t *testing.T) {
		analyzer := &stubAnalyzer{result: sampleResult()}
		resp := post(t, newRouter(analyzer), rpcRequest("message/send", TextPart("   ")))

		require.Nil(t, resp.Error)
		task := resp.Result.(TaskResult)
		assert.Equal(t, StateFailed, task.Status.State)
		assert.Equal(t, missingDescription, task.Status.Message.Parts[0].Text)
		assert.Empty(t, analyzer.got)
	})

	t.Run("analysis error", func(t *testing.T) {
		analyzer := &stubAnalyzer{err: errors.New("upstream down: quota exceeded for key AIza...")}
		resp := post(t, newRouter(analyzer), rpcRequest("message/send", TextPart("a product")))

		task := resp.Result.(TaskResult)
		assert.Equal(t, StateFailed, task.Status.State)
		assert.Equal(t, profiler.FailureMessage, task.Status.Message.Parts[0].Text)
		assert.NotContains(t, task.Status.Message.Parts[0].Text, "quota")
		assert.Empty(t, task.Artifacts)
	})
}

func TestHandleProfilerProtocolErrors(t *testing.T) {
	r := newRouter(&stubAnalyzer{result: sampleResult()})

	tests := []struct {
		name string
		body any
		code int
	}{
		{"malformed json", "{not json", CodeParseError},
		{"wrong version", map[string]any{"jsonrpc": "1.0", "id": "1", "method": "message/send"}, CodeInvalidRequest},
		{"unknown method", map[string]any{"jsonrpc": "2.0", "id": "1", "method": "tasks/cancel"}, CodeMethodNotFound},
		{"missing params", map[string]any{"jsonrpc": "2.0", "id": "1", "method": "message/send"}, CodeInvalidParams},
		{"bad params", map[string]any{"jsonrpc": "2.0", "id": "1", "method": "message/send", "params": []int{1}}, CodeInvalidParams},
		{"non-string method", map[string]any{"jsonrpc": "2.0", "id": "1", "method": 42}, CodeInvalidRequest},
		{"not an object", "[1, 2]", CodeParseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, r, tt.body)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestHandleProfilerEchoesNumericID(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	r := newRouter(analyzer)

	body := `{"jsonrpc":"2.0","id":7,"method":"message/send","params":{"message":{"kind":"message","role":"user","parts":[{"kind":"text","text":"A Slack standup bot"}]}}}`
	resp := post(t, r, body)

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `7`, string(resp.ID))
	assert.Equal(t, []string{"A Slack standup bot"}, analyzer.got)

	task := resp.Result.(TaskResult)
	assert.Equal(t, StateCompleted, task.Status.State)
	assert.Equal(t, "7", task.ID)
	require.NotNil(t, task.Status.Message.TaskID)
	assert.Equal(t, "7", *task.Status.Message.TaskID)
}

func TestHandleProfilerErrorEchoesNumericID(t *testing.T) {
	resp := post(t, newRouter(&stubAnalyzer{}), `{"jsonrpc":"2.0","id":12,"method":"tasks/cancel"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
	assert.JSONEq(t, `12`, string(resp.ID))
}

func TestTaskIDFor(t *testing.T) {
	assert.Equal(t, "req-1", taskIDFor(json.RawMessage(`"req-1"`)))
	assert.Equal(t, "7", taskIDFor(json.RawMessage(`7`)))
	assert.NotEmpty(t, taskIDFor(nil))
	assert.NotEqual(t, "null", taskIDFor(json.RawMessage(`null`)))
}

func TestHandleProfilerDirectMessage(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	r := newRouter(analyzer)

	resp := post(t, r, MessageParams{
		Message: Message{Kind: "message", Role: RoleUser, Parts: []MessagePart{TextPart("An AI labeling marketplace")}},
	})

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `"direct-message"`, string(resp.ID))
	assert.Equal(t, StateCompleted, resp.Result.(TaskResult).Status.State)
}

func TestServeAgentCard(t *testing.T) {
	r := newRouter(&stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var card AgentCard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	assert.Equal(t, "ICP Profiler", card.Name)
	assert.Equal(t, "http://localhost:8080/a2a/profiler", card.Endpoints["a2a"])
	require.Len(t, card.Skills, 1)
	assert.Len(t, card.Skills[0].Examples, 3)
}

func TestFormatAnalysis(t *testing.T) {
	out := formatAnalysis("Standup bot", sampleResult())

	assert.Contains(t, out, "# Ideal Customer Profiles for: Standup bot")
	assert.Contains(t, out, "**Market Overview:** Remote teams are growing.")
	assert.Contains(t, out, "- Compatibility: 92/100")
	assert.Contains(t, out, "**Where They Hang Out:**\n- LinkedIn\n")
	assert.Contains(t, out, "**Hook:** Get your mornings back.")
	assert.Equal(t, "No customer profiles generated.", formatAnalysis("x", nil))
}
