package text

import "strings"

// minDedupLineLength is the shortest line key Deduplicate keeps.
const minDedupLineLength = 11

// Deduplicate drops repeated lines, comparing them case-insensitively after
// trimming. The first occurrence of a line keeps its position. Lines whose
// key is shorter than minDedupLineLength, including blank lines, are dropped.
func Deduplicate(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{}, len(lines))
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		key := strings.ToLower(strings.TrimSpace(line))
		if CountRunes(key) < minDedupLineLength {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
