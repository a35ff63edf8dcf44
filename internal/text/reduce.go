package text

import (
	"regexp"
	"strings"
)

// Token reduction modes. Off leaves content alone, light collapses
// whitespace, moderate additionally strips low-information filler lines.
const (
	ReduceOff      = "off"
	ReduceLight    = "light"
	ReduceModerate = "moderate"
)

var (
	spacesRe      = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	separatorLine = regexp.MustCompile(`^[\s\-=_*~.#]+$`)
)

// Reduce shrinks content according to mode. Unknown modes are treated
// as off.
func Reduce(content, mode string) string {
	switch mode {
	case ReduceLight:
		return reduceLight(content)
	case ReduceModerate:
		return reduceModerate(content)
	default:
		return content
	}
}

func reduceLight(content string) string {
	content = spacesRe.ReplaceAllString(content, " ")
	content = blankLinesRe.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func reduceModerate(content string) string {
	content = reduceLight(content)

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		// Drop pure separator art but keep intentional blank lines.
		if trimmed != "" && separatorLine.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
