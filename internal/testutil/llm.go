package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"codeberg.org/kbase/server/internal/llm"
)

// deterministic bag-of-words embedder: texts sharing words land close together
type HashEmbedder struct {
	Dim int

	mu    sync.Mutex
	Calls int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{Dim: dim}
}

func (h *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	h.mu.Lock()
	h.Calls++
	h.mu.Unlock()

	out := make([][]float32, len(texts))

	for i, text := range texts {
		vec := make([]float32, h.Dim)

		for _, word := range tokenize(text) {
			hasher := fnv.New32a()
			_, _ = hasher.Write([]byte(word))
			vec[hasher.Sum32()%uint32(h.Dim)]++
		}

		normalize(vec)
		out[i] = vec
	}

	return out, nil
}

func (h *HashEmbedder) Dimension() int {
	return h.Dim
}

func (h *HashEmbedder) Model() string {
	return "hash-embedder"
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return
	}

	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// records prompts and answers with a fixed reply
type RecordingGenerator struct {
	Reply string

	mu       sync.Mutex
	Messages [][]llm.Message
}

func (g *RecordingGenerator) Complete(_ context.Context, messages []llm.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Messages = append(g.Messages, messages)

	return g.Reply, nil
}

func (g *RecordingGenerator) Model() string {
	return "recording-generator"
}

// the most recent prompt, or nil
func (g *RecordingGenerator) Last() []llm.Message {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.Messages) == 0 {
		return nil
	}

	return g.Messages[len(g.Messages)-1]
}
