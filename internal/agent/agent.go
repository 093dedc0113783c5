package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/logger"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/retriever"
	"codeberg.org/kbase/server/knowledge/conversations"
)

var ErrEmptyMessage = errors.New("message is empty")

const (
	defaultContextLimit  = 8
	defaultEvidenceLimit = 5
)

// rr may be nil; requests asking for reranking then record a skip
func New(store ConversationStore, ret Retriever, rr retriever.Reranker, generator llm.TextGenerator, m *metrics.Metrics, config Config) *Agent {
	if config.ContextLimit < 1 {
		config.ContextLimit = defaultContextLimit
	}

	if config.EvidenceLimit < 1 {
		config.EvidenceLimit = defaultEvidenceLimit
	}

	if config.RerankMaxDocs < 1 {
		config.RerankMaxDocs = retriever.DefaultRerankMaxDocs
	}

	if config.RerankTopN < 1 {
		config.RerankTopN = retriever.DefaultRerankTopN
	}

	if config.CallTimeout <= 0 {
		config.CallTimeout = retriever.DefaultCallTimeout
	}

	return &Agent{
		conversations: store,
		retriever:     ret,
		reranker:      rr,
		generator:     generator,
		metrics:       m,
		config:        config,
	}
}

// answers one user message. the user turn is stored before any external
// call so a failed answer never loses input; the assistant turn is stored
// only once the model has answered.
func (a *Agent) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := a.conversations.Get(ctx, req.ConversationID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if _, err := a.conversations.AddMessage(ctx, conv.ID, conversations.RoleUser, text, nil); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	resp, err := a.answer(ctx, conv, text, req.UseReranker)
	if err != nil {
		a.metrics.Message("failed")
		return nil, err
	}

	a.metrics.Message("answered")

	return resp, nil
}

func (a *Agent) answer(ctx context.Context, conv *conversations.Conversation, text string, useReranker bool) (*SendResponse, error) {
	scope := retriever.Scope{ProjectID: conv.ProjectID, OwnerID: conv.OwnerID}

	candidates, err := a.retriever.Retrieve(ctx, scope, text)
	if err != nil {
		return nil, err
	}

	var skipped retriever.SkipReason

	if useReranker {
		started := time.Now()
		outcome := retriever.ApplyRerank(ctx, a.reranker, text, candidates,
			a.config.RerankMaxDocs, a.config.RerankTopN, a.config.CallTimeout)
		a.metrics.ObserveStage("rerank", started)

		candidates = outcome.Candidates

		if outcome.Applied {
			a.metrics.Rerank("applied")
		} else {
			skipped = outcome.Reason
			a.metrics.Rerank(string(outcome.Reason))

			if outcome.Err != nil {
				logger.FromContext(ctx).Warn("rerank skipped",
					"conversation_id", conv.ID,
					"reason", outcome.Reason,
					"error", outcome.Err,
				)
			}
		}
	}

	messages := buildMessages(buildContext(candidates, a.config.ContextLimit), text)

	started := time.Now()

	genCtx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
	answer, err := a.generator.Complete(genCtx, messages)
	cancel()

	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	a.metrics.ObserveStage("generate", started)

	evidence := buildEvidence(candidates, a.config.EvidenceLimit)

	meta := map[string]any{
		"evidence_chunk_ids": evidenceChunkIDs(evidence),
		"use_reranker":       useReranker,
		"model":              a.generator.Model(),
	}

	if skipped != "" {
		meta["rerank_skipped"] = string(skipped)
	}

	msg, err := a.conversations.AddMessage(ctx, conv.ID, conversations.RoleAssistant, answer, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &SendResponse{
		MessageID:     msg.ID,
		Answer:        answer,
		Evidence:      evidence,
		UseReranker:   useReranker,
		RerankSkipped: string(skipped),
	}, nil
}
