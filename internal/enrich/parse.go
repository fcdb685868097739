package enrich

import "strings"

// TaglineResult is the parsed form of a combined tagline/highlights response.
type TaglineResult struct {
	Tagline    string
	Highlights []string
}

// Complete reports whether both fields were recovered.
func (r TaglineResult) Complete() bool {
	return r.Tagline != "" && len(r.Highlights) > 0
}

// ParseTaglineHighlights parses a model response of the requested shape
//
//	Tagline: <one line>
//	Highlights:
//	- <bullet>
//	- <bullet>
//
// tolerating the formats models actually produce. Parsing rules:
//   - A line starting with "tagline:" or "tagline -" (case-insensitive) sets
//     the tagline from the text after the separator.
//   - Absent such a marker, the first non-bullet line is the tagline.
//   - Lines starting with "-" become highlights with the dash stripped;
//     stripped lines that themselves start with "tagline" are excluded so the
//     tagline is not duplicated into the highlight list.
//   - If no bullets were found but other non-tagline lines exist, they are
//     concatenated into a single synthetic highlight.
func ParseTaglineHighlights(response string) TaglineResult {
	var result TaglineResult
	if strings.TrimSpace(response) == "" {
		return result
	}

	lines := strings.Split(strings.TrimSpace(response), "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "tagline:"):
			result.Tagline = strings.TrimSpace(line[len("tagline:"):])
		case strings.HasPrefix(lower, "tagline -"):
			result.Tagline = strings.TrimSpace(line[len("tagline -"):])
		case i == 0 && result.Tagline == "" && !strings.HasPrefix(line, "-"):
			result.Tagline = line
		}

		if strings.HasPrefix(line, "-") && len(line) > 1 {
			h := strings.TrimSpace(line[1:])
			if h != "" && !strings.HasPrefix(strings.ToLower(h), "tagline") {
				result.Highlights = append(result.Highlights, h)
			}
		}
	}

	// No bullet structure at all: fold the remaining content into one
	// highlight rather than losing it.
	if len(result.Highlights) == 0 && len(lines) > 1 && result.Tagline != "" {
		var rest []string
		for _, raw := range lines {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(strings.ToLower(line), "tagline") || line == result.Tagline {
				continue
			}
			rest = append(rest, line)
		}
		if len(rest) > 0 {
			result.Highlights = []string{strings.Join(rest, " ")}
		}
	}

	result.Tagline = strings.TrimSpace(strings.Trim(result.Tagline, `"'`))
	return result
}

// SalvageTaglineHighlights is the last-resort split when structured parsing
// recovered nothing from a non-empty response: first line becomes the
// tagline, remaining non-empty lines become highlights.
func SalvageTaglineHighlights(response string) TaglineResult {
	var result TaglineResult
	lines := strings.Split(strings.TrimSpace(response), "\n")
	if len(lines) == 0 {
		return result
	}
	result.Tagline = strings.TrimSpace(lines[0])
	for _, raw := range lines[1:] {
		if line := strings.TrimSpace(raw); line != "" {
			result.Highlights = append(result.Highlights, line)
		}
	}
	return result
}

// formatFeatures renders a feature list as dash-prefixed lines for prompt
// embedding, with a placeholder when the list is empty.
func formatFeatures(features []string) string {
	if len(features) == 0 {
		return "No features provided."
	}
	var b strings.Builder
	for i, f := range features {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(f)
	}
	return b.String()
}

// orPlaceholder substitutes placeholder text for empty descriptions so
// generation never fails on sparse input.
func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
