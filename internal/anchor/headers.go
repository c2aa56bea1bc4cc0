package anchor

import "regexp"

// headerPattern matches an ATX-style heading line. The captured group is the
// heading text after the hash run and its separating whitespace.
var headerPattern = regexp.MustCompile(`^\s*#+\s+(.+)$`)

// HeaderSet is the set of distinct raw header texts found in one file.
type HeaderSet map[string]struct{}

// Contains reports whether text is a known header.
func (s HeaderSet) Contains(text string) bool {
	_, ok := s[text]
	return ok
}

// CollectHeaders returns the distinct header texts present in lines.
// Lines that are not headings are ignored.
func CollectHeaders(lines []string) HeaderSet {
	headers := make(HeaderSet)
	for _, line := range lines {
		m := headerPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headers[m[1]] = struct{}{}
	}
	return headers
}
