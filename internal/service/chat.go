package service

import (
	"context"
	"strings"
	"time"

	"rag-mentor/internal/models"

	"go.uber.org/zap"
)

// ChatService runs one advice turn: retrieve matching techniques, assemble
// the prompt, generate the answer. Stages are strictly ordered by data
// dependency; every outbound call is bounded by providerTimeout.
type ChatService struct {
	retrieval       *RetrievalService
	assembler       *PromptAssembler
	generator       Generator
	providerTimeout time.Duration
	logger          *zap.Logger
}

func NewChatService(retrieval *RetrievalService, assembler *PromptAssembler, generator Generator, providerTimeout time.Duration, logger *zap.Logger) *ChatService {
	return &ChatService{
		retrieval:       retrieval,
		assembler:       assembler,
		generator:       generator,
		providerTimeout: providerTimeout,
		logger:          logger,
	}
}

// Chat answers a user message grounded in retrieved knowledge units.
// Returns the answer and the ordered ku_ids it was grounded on. Any provider
// or store failure comes back as a typed error; there is no degraded answer
// path.
func (s *ChatService) Chat(ctx context.Context, userMessage string, history []models.ConversationTurn, filter models.Filter) (string, []string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", nil, &ValidationError{Msg: "user_message is empty"}
	}

	retrieveCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	units, err := s.retrieval.Retrieve(retrieveCtx, userMessage, filter, 0)
	if err != nil {
		return "", nil, err
	}

	prompt, usedKuIDs := s.assembler.Assemble(userMessage, history, units)

	generateCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	answer, err := s.generator.Generate(generateCtx, prompt)
	if err != nil {
		return "", nil, &GenerationError{Err: err}
	}

	s.logger.Info("Chat turn completed",
		zap.Int("retrieved", len(units)),
		zap.Int("history_turns", len(history)),
		zap.Int("answer_length", len(answer)),
	)

	return answer, usedKuIDs, nil
}
