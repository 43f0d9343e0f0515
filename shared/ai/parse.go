package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// retryInstruction is appended to the original prompt when the first response
// could not be parsed as JSON.
const retryInstruction = "\n\nYour previous response was not valid JSON. Respond again with ONLY the JSON object, no surrounding prose."

// ExtractJSON pulls the first top-level JSON object out of a model response,
// tolerating leading and trailing prose.
func ExtractJSON(response string) (string, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
	}

	return response[startIdx : endIdx+1], nil
}

// CallJSON runs a judgment call and decodes the JSON object embedded in the
// response into T. A malformed response is retried exactly once with a
// corrective instruction; after that the error surfaces so the stage can fall
// back to its fail-closed default.
func CallJSON[T any](ctx context.Context, judge Judge, prompt string) (*T, error) {
	response, err := judge.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, parseErr := decodeResponse[T](response)
	if parseErr == nil {
		return result, nil
	}

	log.Printf("Warning: malformed judgment response, retrying once: %v", parseErr)

	response, err = judge.Generate(ctx, prompt+retryInstruction)
	if err != nil {
		return nil, err
	}

	result, parseErr = decodeResponse[T](response)
	if parseErr != nil {
		return nil, fmt.Errorf("judgment response unparseable after retry: %w", parseErr)
	}
	return result, nil
}

func decodeResponse[T any](response string) (*T, error) {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		// Try to sanitize and parse again
		sanitized := sanitizeJSON(jsonStr)
		if sanitizedErr := json.Unmarshal([]byte(sanitized), &result); sanitizedErr != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON '%s': %w (sanitized version also failed: %v)",
				truncateString(jsonStr, 200), err, sanitizedErr)
		}
		log.Printf("Warning: had to sanitize malformed judgment JSON")
	}

	return &result, nil
}

// sanitizeJSON handles the most common formatting defect in model output:
// unescaped quotes inside string values.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	var sanitizedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, ":") && strings.Contains(line, "\"") {
			colonIdx := strings.Index(line, ":")
			if colonIdx != -1 {
				beforeColon := line[:colonIdx+1]
				afterColon := strings.TrimSpace(line[colonIdx+1:])

				if strings.HasPrefix(afterColon, "\"") {
					lastQuoteIdx := strings.LastIndex(afterColon, "\"")
					if lastQuoteIdx > 0 {
						stringContent := afterColon[1:lastQuoteIdx]
						stringContent = strings.ReplaceAll(stringContent, "\\\"", "\"")
						stringContent = strings.ReplaceAll(stringContent, "\"", "\\\"")

						remainder := afterColon[lastQuoteIdx+1:]
						line = beforeColon + " \"" + stringContent + "\"" + remainder
					}
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
