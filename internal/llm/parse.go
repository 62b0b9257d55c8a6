package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxPoints = 5

var (
	embeddedArrayPattern = regexp.MustCompile(`\[[\s\S]*?\]`)
	bulletPrefixPattern  = regexp.MustCompile(`^[-*•]\s+`)
)

// parsePoints recovers a bullet list from a model completion. Models
// answer in several shapes despite the prompt: a bare JSON array, an
// object with a summary_points key, a JSON array embedded in prose, or
// markdown bullets. Each form is tried in that order; the result is
// capped at 5 points.
func (c *Client) parsePoints(raw string) []string {
	trimmed := strings.TrimSpace(raw)

	if json.Valid([]byte(trimmed)) && validateAgainstSchema(c.pointsSchema, []byte(trimmed)) == nil {
		if points := pointsFromJSON(trimmed); len(points) > 0 {
			return points
		}
	}

	if m := embeddedArrayPattern.FindString(trimmed); m != "" {
		if points := pointsFromJSON(m); len(points) > 0 {
			return points
		}
	}

	var points []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if stripped := bulletPrefixPattern.ReplaceAllString(line, ""); stripped != line {
			points = appendPoint(points, stripped)
		}
		if len(points) >= maxPoints {
			break
		}
	}
	return points
}

func pointsFromJSON(s string) []string {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		return cleanPoints(t)
	case map[string]any:
		if arr, ok := t["summary_points"].([]any); ok {
			return cleanPoints(arr)
		}
	}
	return nil
}

func cleanPoints(items []any) []string {
	var points []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		points = appendPoint(points, s)
		if len(points) >= maxPoints {
			break
		}
	}
	return points
}

func appendPoint(points []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		points = append(points, s)
	}
	return points
}
