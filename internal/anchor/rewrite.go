package anchor

import (
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches a Hugo in-page ref shortcode link, capturing the link text:
//
//	[Text]({{< ref "#target" >}})
var refPattern = regexp.MustCompile(`\[([^\]]+)\]\(\{\{< ref "#[^"]+" >\}\}\)`)

// Stats counts what RewriteLine did with the references on a line.
type Stats struct {
	Rewritten int // References whose text matched a header
	Unmatched int // References left untouched
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rewritten += other.Rewritten
	s.Unmatched += other.Unmatched
}

// FormatRef renders an in-page ref link pointing at slug.
func FormatRef(text, slug string) string {
	return fmt.Sprintf(`[%s]({{< ref "#%s" >}})`, text, slug)
}

// RewriteLine points every ref link whose text names a header in headers at
// that header's slug. Links naming an unknown header are left as they are.
//
// Matches are taken from the original line, left to right, and each one is
// substituted with a replace-all of its exact text. Two identical links on the
// same line are therefore rewritten together by the first of them.
func RewriteLine(line string, headers HeaderSet) (string, Stats) {
	var stats Stats

	matches := refPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return line, stats
	}

	out := line
	for _, m := range matches {
		ref, text := m[0], m[1]
		if !headers.Contains(text) {
			stats.Unmatched++
			continue
		}
		out = strings.ReplaceAll(out, ref, FormatRef(text, Slugify(text)))
		stats.Rewritten++
	}

	return out, stats
}

// RewriteLines collects the headers of lines and then rewrites every line
// against that set. The input slice is not modified.
func RewriteLines(lines []string) ([]string, HeaderSet, Stats) {
	headers := CollectHeaders(lines)

	var total Stats
	out := make([]string, len(lines))
	for i, line := range lines {
		rewritten, stats := RewriteLine(line, headers)
		out[i] = rewritten
		total.Add(stats)
	}

	return out, headers, total
}
