package profiler

import (
	"strings"

	"github.com/BerylCAtieno/icp-profiler/internal/models"
)

// listScale stretches list lengths so a handful of entries reads on a 0-100 axis.
const listScale = 20

// Insights builds the radar chart series for an analysis: one point per
// persona, keyed by the first word of its role.
func Insights(result *models.AnalysisResult) []models.InsightPoint {
	if result == nil {
		return nil
	}

	points := make([]models.InsightPoint, 0, len(result.Personas))
	for _, p := range result.Personas {
		subject := p.Role
		if fields := strings.Fields(p.Role); len(fields) > 0 {
			subject = fields[0]
		}
		points = append(points, models.InsightPoint{
			Subject:     subject,
			FullRole:    p.Role,
			Score:       p.CompatibilityScore,
			PainPoints:  scaled(len(p.PainPoints)),
			Motivations: scaled(len(p.Motivations)),
		})
	}
	return points
}

func scaled(n int) int {
	return min(n*listScale, int(models.MaxCompatibility))
}
