// Package llm implements the gateway between the capture pipeline and the
// configured generative providers: an ordered fallback chain with response
// shape validation and normalization. Total attempts per request are bounded
// by the number of configured providers; there are no retries beyond that.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"thoughtcap/internal/models"
)

// Gateway owns the ordered provider chain.
type Gateway struct {
	providers []Provider
}

// NewGateway creates a gateway over the given providers, tried in order.
func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Providers returns the configured chain, primary first.
func (g *Gateway) Providers() []Provider { return g.providers }

// SupportsVision reports whether any configured provider accepts images.
func (g *Gateway) SupportsVision() bool {
	for _, p := range g.providers {
		if p.SupportsVision() {
			return true
		}
	}
	return false
}

// Classify runs the prompt (and optional image) through the provider chain
// and returns a validated, normalized classification. Every provider failure
// is logged and falls through to the next provider; exhaustion returns a
// *ClassificationError carrying the last cause.
func (g *Gateway) Classify(ctx context.Context, prompt string, image []byte, imageMIME string) (*models.Classification, error) {
	var last error
	attempts := 0

	for i, p := range g.providers {
		if len(image) > 0 && !p.SupportsVision() {
			log.Printf("⚠️ [LLM] Provider %s skipped: no vision support", p.Name())
			continue
		}

		attempts++
		if i > 0 {
			providerFallbacks.WithLabelValues("classify").Inc()
		}
		providerCalls.WithLabelValues(p.Name(), "classify").Inc()

		raw, err := p.Complete(ctx, Request{
			Prompt:      prompt,
			Image:       image,
			ImageMIME:   imageMIME,
			Profile:     ProfileClassify,
			Temperature: 0.7,
			MaxTokens:   2000,
		})
		if err == nil {
			var result models.Classification
			if err = decodeClassification(raw, &result); err == nil {
				Normalize(&result)
				log.Printf("✅ [LLM] Classified with %s: %s", p.Name(), result.Title)
				return &result, nil
			}
		}

		providerFailures.WithLabelValues(p.Name(), "classify").Inc()
		last = &ProviderError{Provider: p.Name(), Op: "classify", Err: err}
		log.Printf("⚠️ [LLM] Provider %s failed: %v", p.Name(), err)

		if ctx.Err() != nil {
			break
		}
	}

	if last == nil {
		last = fmt.Errorf("no provider accepts this input")
	}
	return nil, &ClassificationError{Attempts: attempts, Last: last}
}

// Rationale runs the (cheaper) picks profile through the chain. Callers must
// treat a failure as non-fatal: selection already happened deterministically.
func (g *Gateway) Rationale(ctx context.Context, prompt string) (*models.PicksRationale, error) {
	var last error
	attempts := 0

	for i, p := range g.providers {
		attempts++
		if i > 0 {
			providerFallbacks.WithLabelValues("picks").Inc()
		}
		providerCalls.WithLabelValues(p.Name(), "picks").Inc()

		raw, err := p.Complete(ctx, Request{
			Prompt:      prompt,
			Profile:     ProfilePicks,
			Temperature: 0.7,
			MaxTokens:   1500,
		})
		if err == nil {
			content := ExtractJSON(raw)
			if content != "" {
				var result models.PicksRationale
				if err = json.Unmarshal([]byte(content), &result); err == nil {
					return &result, nil
				}
			} else {
				err = fmt.Errorf("no JSON object in response")
			}
		}

		providerFailures.WithLabelValues(p.Name(), "picks").Inc()
		last = &ProviderError{Provider: p.Name(), Op: "picks", Err: err}
		log.Printf("⚠️ [LLM] Picks rationale with %s failed: %v", p.Name(), err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ClassificationError{Attempts: attempts, Last: last}
}

// decodeClassification validates the raw provider output against the
// expected schema. Failures are never coerced: the caller treats them as a
// provider error eligible for fallback.
func decodeClassification(raw string, out *models.Classification) error {
	content := ExtractJSON(raw)
	if content == "" {
		return fmt.Errorf("no JSON object in response (%d bytes)", len(raw))
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("malformed classification JSON: %w", err)
	}
	if out.Title == "" && out.Type == "" {
		return fmt.Errorf("classification missing both type and title")
	}
	return nil
}

// Normalize clamps a decoded classification into the accepted ranges:
// unknown type becomes "other", title capped at 200 runes, at most 10 links
// and 5 tags, minutes within [1,600] (0 means "use the type heuristic"),
// priority within [1,5].
func Normalize(c *models.Classification) {
	if !models.IsValidItemType(c.Type) {
		c.Type = models.ItemTypeOther
	}
	if runes := []rune(c.Title); len(runes) > 200 {
		c.Title = string(runes[:200])
	}
	if len(c.Links) > 10 {
		c.Links = c.Links[:10]
	}
	if len(c.Tags) > 5 {
		c.Tags = c.Tags[:5]
	}
	if c.EstimatedMinutes <= 0 {
		c.EstimatedMinutes = models.DefaultEstimatedMinutes(c.Type)
	} else if c.EstimatedMinutes > 600 {
		c.EstimatedMinutes = 600
	}
	if c.Priority < 1 {
		c.Priority = 3
	} else if c.Priority > 5 {
		c.Priority = 5
	}
}
