package extract

import "strings"

// BuildNarrative deterministically renders validated text as a
// paragraph-grouped narrative: consecutive non-blank lines join into one
// paragraph (a blank line breaks it), each line is period-terminated if
// it lacks terminal punctuation, and paragraphs are separated by a blank
// line. The result is truncated at maxChars on a word boundary with an
// ellipsis.
func BuildNarrative(rawText string, maxChars int) string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(rawText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, terminate(trimmed))
	}
	flush()

	text := strings.Join(paragraphs, "\n\n")
	return truncateAtWord(text, maxChars)
}

func terminate(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

func truncateAtWord(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := s[:maxChars]
	if idx := strings.LastIndexAny(cut, " \n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n") + "…"
}
