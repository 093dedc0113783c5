package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/google/uuid"
)

// in-memory stand-in for the postgres repositories. the three views share
// one backing store and apply the same (project, owner) scoping.
type Store struct {
	mu            sync.Mutex
	projects      []projects.Project
	documents     []documents.Document
	chunks        []documents.Chunk
	conversations []conversations.Conversation
	messages      []conversations.Message

	// counts MarkIndexed calls
	MarkIndexedCalls int
}

func NewStore() *Store {
	return &Store{}
}

// adds a project for ownerID and returns its id
func (s *Store) AddProject(ownerID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := projects.Project{ID: uuid.NewString(), OwnerID: ownerID, Name: name, CreatedAt: time.Now()}
	s.projects = append(s.projects, p)

	return p.ID
}

func (s *Store) Projects() *Projects {
	return &Projects{s: s}
}

func (s *Store) Documents() *Documents {
	return &Documents{s: s}
}

func (s *Store) Conversations() *Conversations {
	return &Conversations{s: s}
}

// snapshot of every stored chunk
func (s *Store) AllChunks() []documents.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.chunks)
}

// snapshot of every stored message
func (s *Store) AllMessages() []conversations.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.messages)
}

type Projects struct {
	s *Store
}

func (p *Projects) Get(_ context.Context, projectID, ownerID string) (*projects.Project, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, proj := range p.s.projects {
		if proj.ID == projectID && proj.OwnerID == ownerID {
			return &proj, nil
		}
	}

	return nil, projects.ErrProjectNotFound
}

type Documents struct {
	s *Store
}

func (d *Documents) Create(_ context.Context, doc documents.NewDocument) (*documents.Document, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	created := documents.Document{
		ID:               uuid.NewString(),
		ProjectID:        doc.ProjectID,
		OwnerID:          doc.OwnerID,
		Title:            doc.Title,
		SourceKind:       doc.SourceKind,
		Importance:       doc.Importance,
		Tags:             tags,
		ExtractedText:    doc.ExtractedText,
		OriginalFilename: doc.OriginalFilename,
		FileSize:         doc.FileSize,
		ChunkCount:       len(doc.Chunks),
		CreatedAt:        time.Now(),
	}

	d.s.documents = append(d.s.documents, created)

	for position, text := range doc.Chunks {
		d.s.chunks = append(d.s.chunks, documents.Chunk{
			ID:            uuid.NewString(),
			DocumentID:    created.ID,
			ProjectID:     doc.ProjectID,
			OwnerID:       doc.OwnerID,
			Position:      position,
			Text:          text,
			Importance:    doc.Importance,
			Tags:          slices.Clone(tags),
			DocumentTitle: doc.Title,
			SourceKind:    doc.SourceKind,
		})
	}

	return &created, nil
}

func (d *Documents) List(_ context.Context, projectID, ownerID string) ([]documents.Document, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	out := []documents.Document{}

	for i := len(d.s.documents) - 1; i >= 0; i-- {
		doc := d.s.documents[i]
		if doc.ProjectID == projectID && doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}

	return out, nil
}

func (d *Documents) Get(_ context.Context, documentID, ownerID string) (*documents.Document, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	for _, doc := range d.s.documents {
		if doc.ID == documentID && doc.OwnerID == ownerID {
			return &doc, nil
		}
	}

	return nil, documents.ErrDocumentNotFound
}

func (d *Documents) ListChunks(_ context.Context, documentID, ownerID string, limit int) ([]documents.Chunk, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	out := []documents.Chunk{}

	for _, c := range d.s.chunks {
		if c.DocumentID == documentID && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}

	slices.SortFunc(out, func(a, b documents.Chunk) int { return a.Position - b.Position })

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (d *Documents) GetChunk(_ context.Context, chunkID, projectID, ownerID string) (*documents.Chunk, error) {
	return d.findChunk(func(c documents.Chunk) bool {
		return c.ID == chunkID && c.ProjectID == projectID && c.OwnerID == ownerID
	})
}

func (d *Documents) GetChunkByVectorID(_ context.Context, vectorID, projectID, ownerID string) (*documents.Chunk, error) {
	return d.findChunk(func(c documents.Chunk) bool {
		return c.VectorID != nil && *c.VectorID == vectorID && c.ProjectID == projectID && c.OwnerID == ownerID
	})
}

func (d *Documents) findChunk(match func(documents.Chunk) bool) (*documents.Chunk, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	for _, c := range d.s.chunks {
		if match(c) {
			return &c, nil
		}
	}

	return nil, documents.ErrChunkNotFound
}

func (d *Documents) ListIndexable(_ context.Context, f documents.IndexableFilter) ([]documents.Chunk, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	out := []documents.Chunk{}

	for _, c := range d.s.chunks {
		if c.ProjectID != f.ProjectID || c.OwnerID != f.OwnerID {
			continue
		}

		if f.Force || !c.IsIndexed(f.Model, f.Dimension) {
			out = append(out, c)
		}
	}

	slices.SortStableFunc(out, func(a, b documents.Chunk) int {
		if n := strings.Compare(a.DocumentID, b.DocumentID); n != 0 {
			return n
		}

		return a.Position - b.Position
	})

	if len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

func (d *Documents) MarkIndexed(_ context.Context, ownerID, model string, dim int, marks []documents.IndexedChunk) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	d.s.MarkIndexedCalls++

	now := time.Now()

	for _, m := range marks {
		for i := range d.s.chunks {
			c := &d.s.chunks[i]
			if c.ID != m.ChunkID || c.OwnerID != ownerID {
				continue
			}

			vectorID, modelName, dimension, indexedAt := m.VectorID, model, dim, now
			c.VectorID = &vectorID
			c.EmbeddingModel = &modelName
			c.EmbeddingDim = &dimension
			c.IndexedAt = &indexedAt
		}
	}

	return nil
}

func (d *Documents) IndexStats(_ context.Context, projectID, ownerID, model string, dim int) (documents.IndexStats, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	var stats documents.IndexStats

	for _, c := range d.s.chunks {
		if c.ProjectID != projectID || c.OwnerID != ownerID {
			continue
		}

		stats.Total++

		if c.IsIndexed(model, dim) {
			stats.Indexed++
		}
	}

	return stats, nil
}

type Conversations struct {
	s *Store
}

func (c *Conversations) Create(_ context.Context, projectID, ownerID, title string, template conversations.Template) (*conversations.Conversation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if title == "" {
		title = conversations.DefaultTitle
	}

	now := time.Now()
	conv := conversations.Conversation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		OwnerID:   ownerID,
		Title:     title,
		Template:  template,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.s.conversations = append(c.s.conversations, conv)

	return &conv, nil
}

func (c *Conversations) List(_ context.Context, projectID, ownerID string) ([]conversations.Conversation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := []conversations.Conversation{}

	for _, conv := range c.s.conversations {
		if conv.ProjectID == projectID && conv.OwnerID == ownerID {
			out = append(out, conv)
		}
	}

	slices.SortStableFunc(out, func(a, b conversations.Conversation) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return out, nil
}

func (c *Conversations) Get(_ context.Context, conversationID, ownerID string) (*conversations.Conversation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for _, conv := range c.s.conversations {
		if conv.ID == conversationID && conv.OwnerID == ownerID {
			return &conv, nil
		}
	}

	return nil, conversations.ErrConversationNotFound
}

func (c *Conversations) AddMessage(_ context.Context, conversationID, role, content string, meta map[string]any) (*conversations.Message, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if meta == nil {
		meta = map[string]any{}
	}

	now := time.Now()
	msg := conversations.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Meta:           meta,
		CreatedAt:      now,
	}

	c.s.messages = append(c.s.messages, msg)

	for i := range c.s.conversations {
		if c.s.conversations[i].ID == conversationID {
			c.s.conversations[i].UpdatedAt = now
		}
	}

	return &msg, nil
}

func (c *Conversations) ListMessages(_ context.Context, conversationID, ownerID string) ([]conversations.Message, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	owned := false

	for _, conv := range c.s.conversations {
		if conv.ID == conversationID && conv.OwnerID == ownerID {
			owned = true
		}
	}

	out := []conversations.Message{}
	if !owned {
		return out, nil
	}

	for _, m := range c.s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}

	return out, nil
}
