package profiler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/BerylCAtieno/icp-profiler/internal/idgen"
	"github.com/BerylCAtieno/icp-profiler/internal/llm"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
	"github.com/BerylCAtieno/icp-profiler/internal/telemetry"
)

// Temperature trades persona variety against structural reliability.
const Temperature float32 = 0.7

// Analyzer turns a product description into a set of Ideal Customer Profiles.
type Analyzer struct {
	llm     llm.Generator
	ids     idgen.Generator
	log     logrus.FieldLogger
	metrics *telemetry.Metrics
}

type Option func(*Analyzer)

func WithIDGenerator(ids idgen.Generator) Option {
	return func(a *Analyzer) { a.ids = ids }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) { a.log = log }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

func NewAnalyzer(gen llm.Generator, opts ...Option) *Analyzer {
	a := &Analyzer{
		llm: gen,
		ids: idgen.UUID{},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze asks the model for exactly three personas. It either returns a fully
// validated result or an *AnalysisError; there is no retry. Repeated calls with
// the same description are expected to return different personas.
func (a *Analyzer) Analyze(ctx context.Context, productDescription string) (*models.AnalysisResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "profiler.Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("product.description_length", len(productDescription)))

	start := time.Now()
	result, err := a.analyze(ctx, productDescription)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.metrics.ObserveAnalysis(telemetry.OutcomeError, time.Since(start))
		a.log.WithError(err).Warn("product analysis failed")
		return nil, err
	}

	a.metrics.ObserveAnalysis(telemetry.OutcomeOK, time.Since(start))
	a.log.WithFields(logrus.Fields{
		"personas":   len(result.Personas),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("product analysis completed")
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, productDescription string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(productDescription) == "" {
		return nil, newAnalysisError(ErrEmptyDescription, nil)
	}

	text, err := a.llm.GenerateJSON(ctx, llm.StructuredRequest{
		Prompt:      buildPrompt(productDescription),
		Schema:      AnalysisSchema(),
		Temperature: Temperature,
	})
	switch {
	case err == nil:
	case isEmptyResponse(err):
		return nil, newAnalysisError(ErrEmptyResponse, err)
	default:
		return nil, newAnalysisError(ErrUpstream, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, newAnalysisError(ErrEmptyResponse, nil)
	}

	result, err := parseAnalysis(text)
	if err != nil {
		return nil, err
	}

	for i := range result.Personas {
		result.Personas[i].ID = "persona-" + a.ids.Next()
	}
	return result, nil
}

func buildPrompt(productDescription string) string {
	return fmt.Sprintf(`Act as a world-class Chief Marketing Officer and Market Researcher.
Analyze the following product description to identify the Ideal Customer Profiles (ICPs).

Product Description:
"%s"

Identify exactly %d distinct, realistic personas that would benefit most from this product.
Be specific, avoiding generic "Everyone" answers. Focus on high-intent buyers.
Crucial: For 'preferredChannels', do not just list 'LinkedIn' or 'Email'. Identify specific communities, subreddits, hashtags, or conferences where these people actually hang out.
Return the result in strict JSON format based on the schema.`, productDescription, models.PersonasPerAnalysis)
}
