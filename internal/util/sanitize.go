package util

import (
	"strings"
	"unicode"
)

// SanitizeText strips control and invisible characters from user supplied
// text. Newlines and tabs survive so multi-line posts keep their layout.
// maxRunes <= 0 disables truncation.
func SanitizeText(raw string, maxRunes int) string {
	builder := strings.Builder{}
	builder.Grow(len(raw))

	for _, char := range strings.ReplaceAll(raw, "\r\n", "\n") {
		if char == '\n' || char == '\t' {
			builder.WriteRune(char)
			continue
		}
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(builder.String())

	// Truncate by runes (not bytes) to avoid splitting multi-byte characters.
	if maxRunes > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxRunes {
			cleaned = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}

	return cleaned
}

// SanitizeTags cleans each hashtag, drops empties and duplicates, and keeps order.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		cleaned := SanitizeText(tag, 100)
		cleaned = strings.Join(strings.Fields(cleaned), "")
		if cleaned == "" || cleaned == "#" {
			continue
		}
		if !strings.HasPrefix(cleaned, "#") {
			cleaned = "#" + cleaned
		}
		key := strings.ToLower(cleaned)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}

	return out
}

// isInvisibleUnicode returns true for zero-width, formatting, and other
// invisible Unicode characters. The zero-width joiner is kept because
// emoji sequences depend on it.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200D':
		return false
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
