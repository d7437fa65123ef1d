package paymentplans

import (
	"regexp"
	"strings"

	"projectadmin/internal/jsonx"
)

var (
	percentFirst = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%\s*[-–:]?\s*(.*)$`)
	percentLast  = regexp.MustCompile(`^(.*?)\s*[-–:]?\s*(\d+(?:\.\d+)?)\s*%$`)
)

// ParseText reads milestones typed one per line as "title - 20%" or
// "20% title". Lines without a percentage are ignored. It returns nil when no
// line carries a milestone.
func ParseText(text string) []Plan {
	var milestones []Milestone
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		title, pct, ok := parseMilestoneLine(line)
		if !ok {
			continue
		}
		milestones = append(milestones, Milestone{Title: title, TitleHe: title, Percentage: pct})
	}
	if len(milestones) == 0 {
		return nil
	}
	return []Plan{{Name: DefaultPlanName, Milestones: milestones}}
}

func parseMilestoneLine(line string) (string, float64, bool) {
	if m := percentFirst.FindStringSubmatch(line); m != nil {
		if pct, ok := jsonx.ParseNumber(m[1]); ok {
			return strings.TrimSpace(m[2]), pct, true
		}
	}
	if m := percentLast.FindStringSubmatch(line); m != nil {
		if pct, ok := jsonx.ParseNumber(m[2]); ok {
			return strings.TrimSpace(m[1]), pct, true
		}
	}
	return "", 0, false
}
