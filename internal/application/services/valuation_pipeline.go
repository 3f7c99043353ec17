package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
)

// ValuationPipeline runs the three pipeline stages in order: retrieve
// comparable sales, value them, format the result. Strictly linear and
// synchronous; every run operates on its own request-scoped data.
type ValuationPipeline struct {
	retriever *RetrieverService
	valuator  *ValuatorService
	formatter *FormatterService
	metrics   *observability.Metrics
}

// NewValuationPipeline creates a new valuation pipeline
func NewValuationPipeline(retriever *RetrieverService, valuator *ValuatorService, formatter *FormatterService, metrics *observability.Metrics) *ValuationPipeline {
	return &ValuationPipeline{
		retriever: retriever,
		valuator:  valuator,
		formatter: formatter,
		metrics:   metrics,
	}
}

// Run produces a published valuation response for the query, or the
// typed error of whichever stage failed.
func (p *ValuationPipeline) Run(ctx context.Context, query *entities.ValuationQuery) (*entities.ValuationResponse, error) {
	ctx, span := observability.StartSpan(ctx, "valuation.pipeline")
	defer span.End()

	comps, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		p.recordOutcome(ctx, "retrieval_failed")
		span.RecordError(err)
		return nil, err
	}

	result, err := p.valuator.Value(ctx, query, comps)
	if err != nil {
		p.recordOutcome(ctx, "valuation_failed")
		span.RecordError(err)
		return nil, err
	}

	response := p.formatter.Format(query, result)
	p.recordOutcome(ctx, "ok")
	return response, nil
}

func (p *ValuationPipeline) recordOutcome(ctx context.Context, outcome string) {
	if p.metrics == nil {
		return
	}
	p.metrics.ValuationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
