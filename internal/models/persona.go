package models

// Persona is one synthesized Ideal Customer Profile.
type Persona struct {
	ID                 string   `json:"id"`
	Role               string   `json:"role"`
	Industry           string   `json:"industry"`
	CompanySize        string   `json:"companySize"`
	IncomeLevel        string   `json:"incomeLevel"`
	PainPoints         []string `json:"painPoints"`
	Motivations        []string `json:"motivations"`
	PreferredChannels  []string `json:"preferredChannels"`
	MarketingHook      string   `json:"marketingHook"`
	CompatibilityScore float64  `json:"compatibilityScore"`
	Bio                string   `json:"bio"`
}

// AnalysisResult is the output of one analysis call.
type AnalysisResult struct {
	Personas          []Persona `json:"personas"`
	MarketOverview    string    `json:"marketOverview"`
	SuggestedStrategy string    `json:"suggestedStrategy"`
}

// InsightPoint is one axis of the persona radar chart.
type InsightPoint struct {
	Subject     string  `json:"subject"`
	FullRole    string  `json:"fullRole"`
	Score       float64 `json:"score"`
	PainPoints  int     `json:"painPoints"`
	Motivations int     `json:"motivations"`
}

const (
	PersonasPerAnalysis = 3
	MinCompatibility    = 0.0
	MaxCompatibility    = 100.0
)
