package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
)

// transcriptPreviewLength bounds how much transcript the cheap filter sees.
const transcriptPreviewLength = 500

type quickFilterResponse struct {
	IsInstructional bool   `json:"is_instructional"`
	Reasoning       string `json:"reasoning"`
}

// runQuickFilter is Stage 1: a cheap, deliberately lenient judgment of
// whether the video plausibly teaches a technique at all. It exists to avoid
// paying for deep analysis on competition recaps, interviews and vlogs.
// Fails closed on judge errors.
func (p *Pipeline) runQuickFilter(ctx context.Context, cand *models.VideoCandidate) *models.QuickFilterResult {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	resp, err := ai.CallJSON[quickFilterResponse](ctx, p.judge, buildQuickFilterPrompt(cand))
	if err != nil {
		log.Printf("Quick filter failed for %s: %v", cand.ID, err)
		return &models.QuickFilterResult{IsInstructional: false, Reasoning: "Analysis failed"}
	}

	return &models.QuickFilterResult{
		IsInstructional: resp.IsInstructional,
		Reasoning:       resp.Reasoning,
	}
}

func buildQuickFilterPrompt(cand *models.VideoCandidate) string {
	preview := truncate(cand.Transcript, transcriptPreviewLength)

	var b strings.Builder
	fmt.Fprintf(&b, `You are screening BJJ videos for a technique library. Decide whether this video plausibly teaches technique.

Be LENIENT: accept anything likely instructional. Reject only clearly non-instructional content such as competition recaps, interviews, vlogs, podcasts, or promos.

Title: %s
Channel: %s
Description: %s
`, cand.Title, cand.ChannelTitle, truncate(cand.Description, 800))

	if preview != "" {
		fmt.Fprintf(&b, "Transcript preview: %s\n", preview)
	}

	b.WriteString(`
Respond in JSON:
{
  "is_instructional": boolean,
  "reasoning": "one sentence"
}`)
	return b.String()
}

// truncate cuts s to at most maxLength bytes, backing off to a rune boundary
// so multi-byte text never ends up split mid-sequence.
func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
