package parser

import (
	"context"
	"strings"

	"learnloop/internal/contextutil"
)

// Concept is a validated concept record. Main is never empty; Sub defaults to Main.
type Concept struct {
	Main        string `json:"main"`
	Sub         string `json:"sub"`
	Description string `json:"description"`
}

// ConceptResult is the outcome of ParseConcepts.
type ConceptResult struct {
	Concepts []Concept
	Stage    Stage
}

type rawConcepts struct {
	Concepts lenientList[rawConcept] `json:"concepts"`
}

type rawConcept struct {
	Main        flexString `json:"main"`
	Sub         flexString `json:"sub"`
	Description flexString `json:"description"`
}

func normalizeConcepts(raw rawConcepts) ([]Concept, bool) {
	out := make([]Concept, 0, len(raw.Concepts))
	for _, r := range raw.Concepts {
		c := Concept{
			Main:        strings.TrimSpace(string(r.Main)),
			Sub:         strings.TrimSpace(string(r.Sub)),
			Description: strings.TrimSpace(string(r.Description)),
		}
		if c.Main == "" {
			continue
		}
		if c.Sub == "" {
			c.Sub = c.Main
		}
		out = append(out, c)
	}
	return out, len(out) > 0
}

// ParseConcepts decodes backend text into concepts. A parse with zero usable concepts
// counts as a failure; when every stage fails the concepts come from FallbackConcepts.
func (p *Parser) ParseConcepts(ctx context.Context, text string, chunks []string) ConceptResult {
	logger := contextutil.LoggerOr(ctx, p.logger)

	concepts, stage, ok := decode(text, normalizeConcepts)
	if ok {
		logger.Debug("concepts parsed", "stage", stage, "concepts", len(concepts))
		return ConceptResult{Concepts: concepts, Stage: stage}
	}

	concepts = FallbackConcepts(chunks)
	logger.Warn("concept output unusable, using fallback concepts",
		"response_len", len(text),
		"concepts", len(concepts),
	)
	return ConceptResult{Concepts: concepts, Stage: StageFallback}
}
