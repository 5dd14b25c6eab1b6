package crossref

import (
	"fmt"
	"regexp"
	"strings"
)

// taskKeyPattern matches task keys (e.g., ST-12, MDX-3).
var taskKeyPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]{0,4})-(\d+)\b`)

// FormatTaskKey builds the display key "{ProjectKey}-{TaskID}".
func FormatTaskKey(projectKey, taskID string) string {
	return projectKey + "-" + taskID
}

// ParseTaskKey splits a task key into its project key and task id.
func ParseTaskKey(key string) (projectKey, taskID string, err error) {
	key = strings.TrimSpace(key)
	m := taskKeyPattern.FindStringSubmatch(key)
	if m == nil || m[0] != key {
		return "", "", fmt.Errorf("invalid task key %q", key)
	}
	return m[1], m[2], nil
}

// ExtractTaskKeys extracts all task key matches from text.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractTaskKeys(text string) []string {
	matches := taskKeyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// MatchTaskKeys extracts task keys from several pieces of text. If known is
// non-empty, only keys present in that set are returned.
func MatchTaskKeys(known map[string]bool, texts ...string) []string {
	keys := ExtractTaskKeys(strings.Join(texts, " "))

	if len(known) == 0 {
		return keys
	}

	var filtered []string
	for _, key := range keys {
		if known[key] {
			filtered = append(filtered, key)
		}
	}
	return filtered
}

// projectKeyPattern is the shape of a project key: uppercase, starting with
// a letter, at most five characters.
var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,4}$`)

// ValidProjectKey reports whether key can prefix task keys.
func ValidProjectKey(key string) bool {
	return projectKeyPattern.MatchString(key)
}
