package search

import "strings"

// excerpt builds a bounded excerpt around the first case-insensitive
// occurrence of q in text. The window of maxLen characters is centered on
// the match, then both edges snap to the nearest word boundary that does
// not cut into the match. "..." marks a truncated edge. When q does not
// occur, the text is plainly truncated to maxLen.
func excerpt(text, q string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSnippetLen
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(q))
	if idx < 0 {
		if len(text) > maxLen {
			return text[:maxLen]
		}
		return text
	}

	qLen := len(q)
	radius := (maxLen - qLen) / 2
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + qLen + radius
	if end > len(text) {
		end = len(text)
	}

	// Snap the left edge to just after a space, as long as the space sits
	// before the match.
	if start > 0 {
		if sp := strings.IndexByte(text[start:], ' '); sp >= 0 {
			spacePos := start + sp
			if spacePos < idx {
				start = spacePos + 1
			}
		}
	}
	// Snap the right edge back to the last space after the match.
	if end < len(text) {
		if sp := strings.LastIndexByte(text[:end], ' '); sp > idx+qLen {
			end = sp
		}
	}

	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}
