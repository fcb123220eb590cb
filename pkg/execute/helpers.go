// pkg/execute/helpers.go

package execute

import (
	"strings"
)

func buildCommandString(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// ExtractSummary returns up to maxLines lines of output that look like errors,
// joined with " - ", or the first non-empty line when none do.
func ExtractSummary(output string, maxLines int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return ""
	}

	var candidates []string
	var first string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") ||
			strings.Contains(lower, "failed") ||
			strings.Contains(lower, "cannot") ||
			strings.Contains(lower, "no credentials") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) == 0 {
		return first
	}
	if maxLines > 0 && len(candidates) > maxLines {
		candidates = candidates[:maxLines]
	}
	return strings.Join(candidates, " - ")
}
