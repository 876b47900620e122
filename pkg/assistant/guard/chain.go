// FILE: pkg/assistant/guard/chain.go
// PURPOSE: Run all guards, accumulate errors, produce one terminal verdict

package guard

import (
	"log"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// Chain runs the validation guards over a candidate response. Guards are
// independent pure functions executed in a fixed order; every guard runs
// regardless of earlier failures so the caller gets the complete diagnostic
// list, not just the first failure.
type Chain struct {
	guards []Guard
	logger *log.Logger
}

// NewChain builds the standard five-guard chain in its fixed order:
// module, source, chart-type, schema, consistency.
func NewChain(logger *log.Logger) *Chain {
	return &Chain{
		guards: []Guard{
			moduleGuard{},
			sourceGuard{},
			chartTypeGuard{},
			schemaGuard{},
			consistencyGuard{},
		},
		logger: logger,
	}
}

// Validate checks the candidate against the active mode. Text-only candidates
// bypass all guards: the chain polices structured chart/table claims only.
// The returned result is terminal; once produced it fully determines what
// reaches the caller.
func (ch *Chain) Validate(
	mode assistant.OperatingMode,
	candidate *assistant.CandidateResponse,
	userData *assistant.ExtractedUserData,
	userMessage string,
) assistant.MiddlewareResult {

	if candidate.IsTextOnly() {
		return assistant.MiddlewareResult{Valid: true, Payload: candidate}
	}

	in := Input{
		Mode:        mode,
		Candidate:   candidate,
		UserData:    userData,
		UserMessage: userMessage,
	}

	var errs, warnings []string
	for _, g := range ch.guards {
		verdict := g.Check(in)
		if !verdict.Pass {
			ch.logger.Printf("[GUARD] %s FAIL: %s", g.Name(), verdict.Error)
			errs = append(errs, verdict.Error)
		}
		if verdict.Warning != "" {
			warnings = append(warnings, verdict.Warning)
		}
	}

	if len(errs) > 0 {
		return assistant.MiddlewareResult{
			Valid:           false,
			Payload:         nil,
			Errors:          errs,
			Warnings:        warnings,
			FallbackMessage: FallbackMessage(mode, errs),
		}
	}

	return assistant.MiddlewareResult{
		Valid:    true,
		Payload:  candidate,
		Warnings: warnings,
	}
}

// ConsistencyOnly reports whether every accumulated error came from the
// consistency guard. The caller keeps the model's prose in that case instead
// of replacing the whole answer.
func ConsistencyOnly(errs []string) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !containsAnyOf(e, []string{"mismatch", "invented", "absent"}) {
			return false
		}
	}
	return true
}
