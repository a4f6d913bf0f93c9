package core

import "regexp"

// Rules are evaluated in order; the first match wins.
var (
	breakingRe = regexp.MustCompile(`(?i)\bbreaking\b|\bbreak:|^breaking[:\s]`)
	fixRe      = regexp.MustCompile(`(?i)\b(fix|fixed|bug|bugfix|patch|resolve|resolved|hotfix)\b`)
	featureRe  = regexp.MustCompile(`(?i)\b(feat|feature|add|added|new|create|created|implement|implemented)\b`)
)

// Classify maps a commit message to its change type.
// It is the only classification used for both grouping and theming.
func Classify(message string) ChangeType {
	switch {
	case breakingRe.MatchString(message):
		return ChangeBreaking
	case fixRe.MatchString(message):
		return ChangeFix
	case featureRe.MatchString(message):
		return ChangeFeature
	default:
		return ChangeOther
	}
}
