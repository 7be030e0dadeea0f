package a2a

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

// formatAnalysis renders an analysis as Markdown for chat-style A2A clients.
func formatAnalysis(description string, result *models.AnalysisResult) string {
	if result == nil || len(result.Personas) == 0 {
		return "No customer profiles generated."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Ideal Customer Profiles for: %s\n\n", description)
	fmt.Fprintf(&b, "**Market Overview:** %s\n\n", result.MarketOverview)
	fmt.Fprintf(&b, "**Suggested Strategy:** %s\n", result.SuggestedStrategy)

	for i, p := range result.Personas {
		b.WriteString("\n---\n\n")
		fmt.Fprintf(&b, "## %d. %s (%s)\n\n", i+1, p.Role, p.Industry)
		fmt.Fprintf(&b, "- Compatibility: %.0f/100\n", p.CompatibilityScore)
		if p.CompanySize != "" {
			fmt.Fprintf(&b, "- Company size: %s\n", p.CompanySize)
		}
		if p.IncomeLevel != "" {
			fmt.Fprintf(&b, "- Budget: %s\n", p.IncomeLevel)
		}
		fmt.Fprintf(&b, "\n> %s\n", p.Bio)

		writeList(&b, "Pain Points", p.PainPoints)
		writeList(&b, "Motivations", p.Motivations)
		writeList(&b, "Where They Hang Out", p.PreferredChannels)
		fmt.Fprintf(&b, "\n**Hook:** %s\n", p.MarketingHook)
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:**\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
