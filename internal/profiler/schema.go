package profiler

import "github.com/google/generative-ai-go/genai"

var personaRequired = []string{
	"role", "industry", "painPoints", "motivations",
	"marketingHook", "compatibilityScore", "bio", "preferredChannels",
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// AnalysisSchema is the response schema sent with every analysis request.
func AnalysisSchema() *genai.Schema {
	persona := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"role":        {Type: genai.TypeString, Description: "Job title or role of the ICP"},
			"industry":    {Type: genai.TypeString, Description: "Industry sector"},
			"companySize": {Type: genai.TypeString, Description: "Typical company size (e.g., SMB, Enterprise)"},
			"incomeLevel": {Type: genai.TypeString, Description: "Estimated budget or income level"},
			"painPoints": stringList(
				"List of top 3-5 specific burning problems this person faces that keep them up at night."),
			"motivations": stringList("Key drivers for purchasing solutions"),
			"preferredChannels": stringList(
				"Specific digital communities, physical events, newsletters, or subreddits where this persona actively hangs out. " +
					"Be specific (e.g., 'r/SaaS', 'Hacker News', 'Dreamforce', 'Marketing Brew')."),
			"marketingHook": {Type: genai.TypeString, Description: "A one-sentence powerful marketing message targeting this persona"},
			"compatibilityScore": {
				Type:        genai.TypeNumber,
				Description: "A score from 0 to 100 indicating how well this persona fits the product",
			},
			"bio": {Type: genai.TypeString, Description: "A short, first-person paragraph describing who they are."},
		},
		Required: personaRequired,
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"personas": {
				Type:        genai.TypeArray,
				Items:       persona,
				Description: "Identify exactly 3 distinct Ideal Customer Profiles.",
			},
			"marketOverview":    {Type: genai.TypeString, Description: "Brief summary of the market landscape for this product."},
			"suggestedStrategy": {Type: genai.TypeString, Description: "High-level go-to-market strategy suggestion."},
		},
		Required: []string{"personas", "marketOverview", "suggestedStrategy"},
	}
}
