package app

import (
	"github.com/Chandru2600/Vaidra/internal/sdk/models"
	"github.com/Chandru2600/Vaidra/internal/services/analysis"
)

// normalizeEnvelope shapes the tolerant remote envelope into stored fields.
// Alias fields are consulted when the primary is absent, and severity is
// clamped to the defined triage values.
func normalizeEnvelope(env analysis.Envelope) models.NewScan {
	condition := env.Condition
	if condition == "" {
		condition = env.Diagnosis
	}
	if condition == "" {
		condition = "Unclear image"
	}

	confidence := float64(env.Confidence)
	if confidence == 0 && env.Score != 0 {
		confidence = float64(env.Score)
	}

	steps := env.Steps
	if len(steps) == 0 {
		steps = env.Advice
	}

	return models.NewScan{
		Condition:  condition,
		Confidence: confidence,
		Severity:   models.NormalizeSeverity(env.Severity),
		Steps:      models.JoinList(steps),
		Warnings:   models.JoinList(env.Warnings),
	}
}

// scanResponse reshapes a stored row into the public result format.
func scanResponse(scan models.Scan) ScanResponse {
	var condition string
	var confidence float64
	if scan.Condition != nil {
		condition = *scan.Condition
	}
	// Rows predating severity normalization may hold NULL.
	severity := models.SeverityMinor
	if scan.Severity != nil && *scan.Severity != "" {
		severity = *scan.Severity
	}
	if scan.Confidence != nil {
		confidence = *scan.Confidence
	}

	return ScanResponse{
		ID: scan.ID,
		Result: ScanResult{
			Condition:  condition,
			Confidence: confidence,
			Severity:   severity,
			Steps:      models.SplitList(scan.Steps),
			Warnings:   models.SplitList(scan.Warnings),
		},
		CreatedAt: scan.CreatedAt,
	}
}
