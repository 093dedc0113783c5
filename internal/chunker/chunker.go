package chunker

import "strings"

// Options controls context windowing.
type Options struct {
	Window   int // units taken on each side of the center unit
	MaxChars int // joined windows longer than this collapse to the center unit
}

func DefaultOptions() Options {
	return Options{
		Window:   1,
		MaxChars: 1200,
	}
}

// splits extracted text into line units, dropping blank lines and
// lines shorter than two characters after trimming
func BuildUnits(text string) []string {
	var units []string

	for _, line := range splitLines(text) {
		s := strings.TrimSpace(line)

		if s == "" || charCount(s) < minUnitChars {
			continue
		}

		units = append(units, s)
	}

	return units
}

// produces exactly one chunk per unit, centered on it. Each chunk joins the
// units in [i-window, i+window] with newlines; when that exceeds MaxChars the
// chunk is the center unit alone, never a truncated window.
func ChunkWithContext(units []string, opts Options) []string {
	if len(units) == 0 {
		return []string{}
	}

	window := max(opts.Window, 0)
	chunks := make([]string, 0, len(units))

	for i := range units {
		start := max(i-window, 0)
		end := min(i+window, len(units)-1)

		candidate := strings.Join(units[start:end+1], "\n")

		if charCount(candidate) > opts.MaxChars {
			candidate = units[i]
		}

		chunks = append(chunks, candidate)
	}

	return chunks
}

// runs BuildUnits followed by ChunkWithContext
func ChunkText(text string, opts Options) []string {
	return ChunkWithContext(BuildUnits(text), opts)
}
