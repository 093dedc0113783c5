package ingest

import (
	"strconv"
	"strings"
)

const (
	MaxUploadBytes    = 30 * 1024 * 1024
	DefaultImportance = 3
	defaultTitle      = "Untitled document"
)

func ClampImportance(n int) int {
	return min(max(n, 1), 5)
}

// parses an importance form value; unparsable input is the default 3
func ParseImportance(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultImportance
	}

	return ClampImportance(n)
}

// splits a comma separated tag string
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// trims tags and drops empties
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}

	return out
}
