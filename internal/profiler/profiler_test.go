package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/icp-profiler/internal/idgen"
	"github.com/BerylCAtieno/icp-profiler/internal/llm"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

const standupPitch = "A B2B SaaS tool that helps remote engineering teams automate their daily standups via Slack."

// fakeGenerator replays canned responses and records the requests it saw.
type fakeGenerator struct {
	responses []string
	err       error
	requests  []llm.StructuredRequest
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, req llm.StructuredRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/standup_analysis.json")
	require.NoError(t, err)
	return string(data)
}

func mutateFixture(t *testing.T, mutate func(doc map[string]any)) string {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(loadFixture(t)), &doc))
	mutate(doc)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func newTestAnalyzer(gen llm.Generator) *Analyzer {
	return NewAnalyzer(gen, WithIDGenerator(idgen.NewSequence("")), WithLogger(quietLogger()))
}

func assertValidResult(t *testing.T, result *models.AnalysisResult) {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Personas, models.PersonasPerAnalysis)

	seen := map[string]bool{}
	for _, p := range result.Personas {
		assert.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "duplicate persona id %s", p.ID)
		seen[p.ID] = true
		assert.GreaterOrEqual(t, p.CompatibilityScore, models.MinCompatibility)
		assert.LessOrEqual(t, p.CompatibilityScore, models.MaxCompatibility)
	}
}

func TestAnalyzeStandupScenario(t *testing.T) {
	gen := &fakeGenerator{responses: []string{loadFixture(t)}}
	a := newTestAnalyzer(gen)

	result, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	assertValidResult(t, result)

	for _, p := range result.Personas {
		assert.NotEmpty(t, p.Role)
		assert.NotEmpty(t, p.Industry)
		assert.NotEmpty(t, p.Bio)

		generic := 0
		for _, ch := range p.PreferredChannels {
			if ch == "LinkedIn" || ch == "Email" {
				generic++
			}
		}
		assert.Less(t, generic, len(p.PreferredChannels), "channels for %s are all generic", p.Role)
	}

	assert.Equal(t, []string{"persona-1", "persona-2", "persona-3"},
		[]string{result.Personas[0].ID, result.Personas[1].ID, result.Personas[2].ID})
	assert.Equal(t, "Engineering Manager", result.Personas[0].Role)
	assert.Equal(t, 78.5, result.Personas[1].CompatibilityScore)
	assert.NotEmpty(t, result.MarketOverview)
	assert.NotEmpty(t, result.SuggestedStrategy)
}

func TestAnalyzeSendsPromptSchemaAndTemperature(t *testing.T) {
	gen := &fakeGenerator{responses: []string{loadFixture(t)}}
	a := newTestAnalyzer(gen)

	_, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	require.Len(t, gen.requests, 1)

	req := gen.requests[0]
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Contains(t, req.Prompt, `"`+standupPitch+`"`)
	assert.Contains(t, req.Prompt, "exactly 3 distinct")
	assert.Contains(t, req.Prompt, "do not just list 'LinkedIn' or 'Email'")

	require.NotNil(t, req.Schema)
	assert.Equal(t, genai.TypeObject, req.Schema.Type)
	assert.ElementsMatch(t, []string{"personas", "marketOverview", "suggestedStrategy"}, req.Schema.Required)
	persona := req.Schema.Properties["personas"].Items
	require.NotNil(t, persona)
	assert.ElementsMatch(t, personaRequired, persona.Required)
	assert.Equal(t, genai.TypeNumber, persona.Properties["compatibilityScore"].Type)
	assert.NotContains(t, persona.Required, "companySize")
}

func TestAnalyzeIsNotIdempotent(t *testing.T) {
	second := mutateFixture(t, func(doc map[string]any) {
		personas := doc["personas"].([]any)
		personas[0].(map[string]any)["role"] = "VP of Engineering"
	})
	gen := &fakeGenerator{responses: []string{loadFixture(t), second}}
	a := NewAnalyzer(gen, WithLogger(quietLogger()))

	first, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	again, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)

	assertValidResult(t, first)
	assertValidResult(t, again)
	assert.NotEqual(t, first.Personas[0].ID, again.Personas[0].ID)
}

func TestAnalyzeClampsScores(t *testing.T) {
	text := mutateFixture(t, func(doc map[string]any) {
		personas := doc["personas"].([]any)
		personas[0].(map[string]any)["compatibilityScore"] = 140
		personas[1].(map[string]any)["compatibilityScore"] = -3
	})
	a := newTestAnalyzer(&fakeGenerator{responses: []string{text}})

	result, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Personas[0].CompatibilityScore)
	assert.Equal(t, 0.0, result.Personas[1].CompatibilityScore)
}

func TestAnalyzeAcceptsCodeFence(t *testing.T) {
	text := "```json\n" + loadFixture(t) + "\n```"
	a := newTestAnalyzer(&fakeGenerator{responses: []string{text}})

	result, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	assertValidResult(t, result)
}

func TestAnalyzeErrors(t *testing.T) {
	upstream := errors.New("503 service unavailable")

	tests := []struct {
		name        string
		description string
		gen         *fakeGenerator
		kind        error
		contains    string
	}{
		{
			name:        "blank description",
			description: "   ",
			gen:         &fakeGenerator{},
			kind:        ErrEmptyDescription,
		},
		{
			name:        "upstream failure",
			description: standupPitch,
			gen:         &fakeGenerator{err: upstream},
			kind:        ErrUpstream,
			contains:    "503",
		},
		{
			name:        "provider reports empty response",
			description: standupPitch,
			gen:         &fakeGenerator{err: llm.ErrEmptyResponse},
			kind:        ErrEmptyResponse,
		},
		{
			name:        "blank text",
			description: standupPitch,
			gen:         &fakeGenerator{responses: []string{"  "}},
			kind:        ErrEmptyResponse,
		},
		{
			name:        "not json",
			description: standupPitch,
			gen:         &fakeGenerator{responses: []string{"Here are your personas: ..."}},
			kind:        ErrParse,
		},
		{
			name:        "two personas",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				doc["personas"] = doc["personas"].([]any)[:2]
			})}},
			kind:     ErrInvalidPayload,
			contains: "expected 3 personas, got 2",
		},
		{
			name:        "missing role",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				delete(doc["personas"].([]any)[2].(map[string]any), "role")
			})}},
			kind:     ErrInvalidPayload,
			contains: "persona 3: role is missing",
		},
		{
			name:        "string score",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				doc["personas"].([]any)[0].(map[string]any)["compatibilityScore"] = "high"
			})}},
			kind:     ErrInvalidPayload,
			contains: "compatibilityScore is not numeric",
		},
		{
			name:        "missing score",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				delete(doc["personas"].([]any)[1].(map[string]any), "compatibilityScore")
			})}},
			kind:     ErrInvalidPayload,
			contains: "compatibilityScore is missing",
		},
		{
			name:        "blank channels",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				doc["personas"].([]any)[0].(map[string]any)["preferredChannels"] = []string{" ", ""}
			})}},
			kind:     ErrInvalidPayload,
			contains: "preferredChannels is empty",
		},
		{
			name:        "missing overview",
			description: standupPitch,
			gen: &fakeGenerator{responses: []string{mutateFixture(t, func(doc map[string]any) {
				delete(doc, "marketOverview")
			})}},
			kind:     ErrInvalidPayload,
			contains: "marketOverview",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(tt.gen)

			result, err := a.Analyze(context.Background(), tt.description)
			assert.Nil(t, result)
			require.Error(t, err)

			var analysisErr *AnalysisError
			require.True(t, errors.As(err, &analysisErr))
			assert.ErrorIs(t, err, tt.kind)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestAnalyzeBlankDescriptionSkipsService(t *testing.T) {
	gen := &fakeGenerator{}
	a := newTestAnalyzer(gen)

	_, err := a.Analyze(context.Background(), "\n\t")
	require.Error(t, err)
	assert.Empty(t, gen.requests)
}

func TestAnalyzeTrimsFields(t *testing.T) {
	text := mutateFixture(t, func(doc map[string]any) {
		p := doc["personas"].([]any)[0].(map[string]any)
		p["role"] = "  Engineering Manager \n"
		p["painPoints"] = []string{"  late blockers ", "", "timezones"}
	})
	a := newTestAnalyzer(&fakeGenerator{responses: []string{text}})

	result, err := a.Analyze(context.Background(), standupPitch)
	require.NoError(t, err)
	assert.Equal(t, "Engineering Manager", result.Personas[0].Role)
	assert.Equal(t, []string{"late blockers", "timezones"}, result.Personas[0].PainPoints)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
	assert.True(t, strings.HasPrefix(stripCodeFence("```\n[1]\n```"), "["))
}
