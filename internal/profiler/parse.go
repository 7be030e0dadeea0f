package profiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

// rawPersona mirrors the model output before validation. Pointers and raw
// messages let us tell a missing field from a zero value.
type rawPersona struct {
	Role               *string         `json:"role"`
	Industry           *string         `json:"industry"`
	CompanySize        string          `json:"companySize"`
	IncomeLevel        string          `json:"incomeLevel"`
	PainPoints         []string        `json:"painPoints"`
	Motivations        []string        `json:"motivations"`
	PreferredChannels  []string        `json:"preferredChannels"`
	MarketingHook      *string         `json:"marketingHook"`
	CompatibilityScore json.RawMessage `json:"compatibilityScore"`
	Bio                *string         `json:"bio"`
}

type rawAnalysis struct {
	Personas          []rawPersona `json:"personas"`
	MarketOverview    *string      `json:"marketOverview"`
	SuggestedStrategy *string      `json:"suggestedStrategy"`
}

func parseAnalysis(text string) (*models.AnalysisResult, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, newAnalysisError(ErrParse, err)
	}

	if len(raw.Personas) != models.PersonasPerAnalysis {
		return nil, invalid("expected %d personas, got %d", models.PersonasPerAnalysis, len(raw.Personas))
	}
	overview, ok := required(raw.MarketOverview)
	if !ok {
		return nil, invalid("marketOverview is missing")
	}
	strategy, ok := required(raw.SuggestedStrategy)
	if !ok {
		return nil, invalid("suggestedStrategy is missing")
	}

	result := &models.AnalysisResult{
		Personas:          make([]models.Persona, 0, len(raw.Personas)),
		MarketOverview:    overview,
		SuggestedStrategy: strategy,
	}
	for i, rp := range raw.Personas {
		p, err := rp.validate()
		if err != nil {
			return nil, invalid("persona %d: %v", i+1, err)
		}
		result.Personas = append(result.Personas, p)
	}
	return result, nil
}

func (rp rawPersona) validate() (models.Persona, error) {
	var p models.Persona
	var ok bool

	if p.Role, ok = required(rp.Role); !ok {
		return p, fmt.Errorf("role is missing")
	}
	if p.Industry, ok = required(rp.Industry); !ok {
		return p, fmt.Errorf("industry is missing")
	}
	if p.MarketingHook, ok = required(rp.MarketingHook); !ok {
		return p, fmt.Errorf("marketingHook is missing")
	}
	if p.Bio, ok = required(rp.Bio); !ok {
		return p, fmt.Errorf("bio is missing")
	}
	if p.PainPoints = cleanList(rp.PainPoints); len(p.PainPoints) == 0 {
		return p, fmt.Errorf("painPoints is empty")
	}
	if p.Motivations = cleanList(rp.Motivations); len(p.Motivations) == 0 {
		return p, fmt.Errorf("motivations is empty")
	}
	if p.PreferredChannels = cleanList(rp.PreferredChannels); len(p.PreferredChannels) == 0 {
		return p, fmt.Errorf("preferredChannels is empty")
	}

	score, err := parseScore(rp.CompatibilityScore)
	if err != nil {
		return p, err
	}
	p.CompatibilityScore = score
	p.CompanySize = strings.TrimSpace(rp.CompanySize)
	p.IncomeLevel = strings.TrimSpace(rp.IncomeLevel)
	return p, nil
}

// parseScore accepts a JSON number and clamps it into [0,100].
func parseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("compatibilityScore is missing")
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, fmt.Errorf("compatibilityScore is not numeric: %s", raw)
	}
	return math.Max(models.MinCompatibility, math.Min(models.MaxCompatibility, score)), nil
}

func required(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite the
// JSON MIME type.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func invalid(format string, args ...any) *AnalysisError {
	return newAnalysisError(ErrInvalidPayload, fmt.Errorf(format, args...))
}
