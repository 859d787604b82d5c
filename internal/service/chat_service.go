package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AnselmJeong/Flow-v4/internal/config"
	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/llm"
	"github.com/AnselmJeong/Flow-v4/internal/prompt"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
)

// Generator produces a model reply for an assembled turn sequence.
type Generator interface {
	Generate(ctx context.Context, turns []prompt.Turn, cfg llm.ModelConfig) (string, error)
}

// ChatService runs conversation turns against the model
type ChatService struct {
	cfg          *config.Config
	sessionRepo  *repository.SessionRepository
	settingsRepo *repository.SettingsRepository
	gateway      Generator
	logger       *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	sessionRepo *repository.SessionRepository,
	settingsRepo *repository.SettingsRepository,
	gateway Generator,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:          cfg,
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// SendMessage runs one conversation turn: it persists the user's message,
// rebuilds the full anchored prompt, calls the model, and persists the reply.
//
// The user message is durable the moment it is appended; nothing after that
// point rolls it back. A failed model call is recorded in-thread as an
// assistant-role notice and reported on the outcome's Failure field rather
// than as an error, so the transcript always shows what happened.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*domain.TurnOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	// History is captured before the new message lands; the assembler gets
	// the new text separately as the final turn.
	history, err := s.sessionRepo.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Body:      text,
	}
	if err := s.sessionRepo.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	outcome := &domain.TurnOutcome{
		SessionID:   sessionID,
		UserMessage: userMsg,
	}

	assembly, err := prompt.Assemble(session.AnchorText, history, text)
	if err != nil {
		return s.failTurn(ctx, outcome, err)
	}
	if !assembly.Anchored {
		s.logger.Warn("transcript does not begin with a user turn, replaying without anchor frame",
			zap.String("session_id", sessionID))
	}

	modelCfg, err := s.modelConfig(ctx)
	if err != nil {
		return nil, err
	}

	answer, err := s.gateway.Generate(ctx, assembly.Turns, modelCfg)
	if err != nil {
		return s.failTurn(ctx, outcome, err)
	}

	assistantMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Body:      answer,
	}
	if err := s.sessionRepo.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}
	outcome.Assistant = assistantMsg

	return outcome, nil
}

// failTurn records a failed model call as an assistant-role notice in the
// transcript and tags the outcome with the failure classification.
func (s *ChatService) failTurn(ctx context.Context, outcome *domain.TurnOutcome, cause error) (*domain.TurnOutcome, error) {
	failure := failureFor(cause)
	s.logger.Warn("model call failed",
		zap.String("session_id", outcome.SessionID),
		zap.String("kind", failure.Kind),
		zap.Error(cause))

	notice := &domain.Message{
		SessionID: outcome.SessionID,
		Role:      domain.RoleAssistant,
		Body:      failure.Message,
	}
	if err := s.sessionRepo.AppendMessage(ctx, notice); err != nil {
		return nil, err
	}
	outcome.Assistant = notice
	outcome.Failure = failure
	return outcome, nil
}

// modelConfig resolves the credentials for this call from settings, falling
// back to the configured default model.
func (s *ChatService) modelConfig(ctx context.Context) (llm.ModelConfig, error) {
	apiKey, err := s.settingsRepo.Get(ctx, domain.SettingAPIKey)
	if err != nil {
		return llm.ModelConfig{}, err
	}
	model, err := s.settingsRepo.Get(ctx, domain.SettingModel)
	if err != nil {
		return llm.ModelConfig{}, err
	}
	if model == "" {
		model = s.cfg.LLM.Model
	}
	return llm.ModelConfig{APIKey: apiKey, Model: model}, nil
}

// failureFor maps a model-call error onto its failure kind and the notice
// text shown in the thread.
func failureFor(err error) *domain.TurnFailure {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return &domain.TurnFailure{
			Kind:    domain.FailureNotConfigured,
			Message: "No model API key is configured. Add one in Settings, then ask again.",
		}
	case errors.Is(err, domain.ErrEmptyGeneration):
		return &domain.TurnFailure{
			Kind:    domain.FailureEmptyGeneration,
			Message: "The model returned an empty reply. Please try again.",
		}
	case errors.Is(err, domain.ErrEmptyAnchor):
		return &domain.TurnFailure{
			Kind:    domain.FailureEmptyAnchor,
			Message: "This conversation lost its source passage and cannot continue.",
		}
	case errors.Is(err, domain.ErrProvider):
		return &domain.TurnFailure{
			Kind:    domain.FailureProvider,
			Message: fmt.Sprintf("The model service rejected the request: %v", err),
		}
	default:
		return &domain.TurnFailure{
			Kind:    domain.FailureTransport,
			Message: fmt.Sprintf("Could not reach the model service: %v", err),
		}
	}
}
