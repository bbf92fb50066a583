package bm25

import "strings"

const snippetWindow = 120

// snippet extracts a window of text around the first matched term and
// wraps every term occurrence in square brackets.
func snippet(text string, terms []string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)

	first := -1
	for _, t := range terms {
		if i := strings.Index(lower, t); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}

	start, end := 0, len(text)
	prefix, suffix := "", ""
	if first > snippetWindow/2 {
		start = first - snippetWindow/2
		prefix = "..."
	}
	if end > start+snippetWindow {
		end = start + snippetWindow
		suffix = "..."
	}
	return prefix + highlight(text[start:end], terms) + suffix
}

// highlight wraps each term occurrence in [brackets], matching
// case-insensitively and preferring the longest term at each position.
func highlight(window string, terms []string) string {
	lower := strings.ToLower(window)
	var sb strings.Builder
	pos := 0
	for pos < len(window) {
		matchAt, matchLen := -1, 0
		for _, t := range terms {
			if t == "" {
				continue
			}
			i := strings.Index(lower[pos:], t)
			if i < 0 {
				continue
			}
			at := pos + i
			if matchAt < 0 || at < matchAt || (at == matchAt && len(t) > matchLen) {
				matchAt, matchLen = at, len(t)
			}
		}
		if matchAt < 0 {
			sb.WriteString(window[pos:])
			break
		}
		sb.WriteString(window[pos:matchAt])
		sb.WriteByte('[')
		sb.WriteString(window[matchAt : matchAt+matchLen])
		sb.WriteByte(']')
		pos = matchAt + matchLen
	}
	return sb.String()
}
