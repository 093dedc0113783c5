package chunker

import (
	"strings"
	"unicode/utf8"
)

const minUnitChars = 2

var lineBreakReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", " ", "\n", " ", "\n")

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(lineBreakReplacer.Replace(text), "\n")
}

// character (not byte) length, so limits behave the same for non-latin text
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
