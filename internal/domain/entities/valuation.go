package entities

import (
	"fmt"
	"strings"
)

// Condition grades the equipment being valued.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// conditionMultipliers are the fixed market premiums and discounts applied
// after all additive adjustments.
var conditionMultipliers = map[Condition]float64{
	ConditionExcellent: 1.12,
	ConditionGood:      1.05,
	ConditionFair:      0.92,
	ConditionPoor:      0.80,
}

// ParseCondition normalizes a request condition string.
func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := conditionMultipliers[c]; !ok {
		return "", fmt.Errorf("unknown condition %q (expected excellent, good, fair or poor)", s)
	}
	return c, nil
}

// Multiplier returns the market multiplier for the condition grade.
func (c Condition) Multiplier() float64 {
	if m, ok := conditionMultipliers[c]; ok {
		return m
	}
	return 1.0
}

// Confidence grades how trustworthy an estimate is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ValuationQuery is the immutable valuation request. Hours is recovered
// from the free-text description when stated there.
type ValuationQuery struct {
	Make        string
	Model       string
	Year        int
	Condition   Condition
	Description string
	Hours       *float64
}

// Adjustment is one named, ordered correction applied to the base value.
type Adjustment struct {
	Reason string  `json:"reason"`
	Delta  float64 `json:"delta"`
}

// PriceRange bounds the estimate using the surviving comparable set.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationReasoning is the structured account of how the estimate was
// derived, rendered into prose by the formatter.
type ValuationReasoning struct {
	BaseValue       float64
	OutliersRemoved int
	RelativeSpread  float64
	AveragePrice    float64
}

// ValuationResult is the valuator's output, internal to the pipeline.
type ValuationResult struct {
	FairMarketValue     float64
	Confidence          Confidence
	ComparableSalesUsed []ComparableSale
	Adjustments         []Adjustment
	PriceRange          PriceRange
	Reasoning           ValuationReasoning
}
