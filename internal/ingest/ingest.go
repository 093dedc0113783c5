package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/knowledge/documents"
)

var (
	ErrNoText            = errors.New("no text extracted")
	ErrInvalidSourceKind = errors.New("invalid source kind")
	ErrFileTooLarge      = errors.New("file too large")
)

func New(projects ProjectStore, docs DocumentStore, options chunker.Options) *Service {
	return &Service{
		projects:  projects,
		documents: docs,
		options:   options,
	}
}

// validates the upload, chunks its text and stores document and chunks
// together. nothing is stored when any step fails.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrNoText
	}

	kind := req.SourceKind
	if kind == "" {
		kind = documents.SourceText
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSourceKind, kind)
	}

	if req.FileSize > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	if _, err := s.projects.Get(ctx, req.ProjectID, req.OwnerID); err != nil {
		return nil, err
	}

	chunks := chunker.ChunkText(text, s.options)
	if len(chunks) == 0 {
		return nil, ErrNoText
	}

	doc, err := s.documents.Create(ctx, documents.NewDocument{
		ProjectID:        req.ProjectID,
		OwnerID:          req.OwnerID,
		Title:            titleFor(req),
		SourceKind:       kind,
		Importance:       ClampImportance(req.Importance),
		Tags:             NormalizeTags(req.Tags),
		ExtractedText:    text,
		OriginalFilename: req.OriginalFilename,
		FileSize:         req.FileSize,
		Chunks:           chunks,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Document: doc, ChunksCreated: len(chunks)}, nil
}

func titleFor(req Request) string {
	if title := strings.TrimSpace(req.Title); title != "" {
		return title
	}

	if name := strings.TrimSpace(req.OriginalFilename); name != "" {
		return name
	}

	return defaultTitle
}
