package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/BerylCAtieno/icp-profiler/internal/llm"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
	"github.com/BerylCAtieno/icp-profiler/internal/telemetry"
)

var (
	ErrEmptyMessage   = errors.New("chat: message is empty")
	ErrBusy           = errors.New("chat: a reply is already pending")
	ErrSessionReset   = errors.New("chat: session was reset while the reply was pending")
	ErrInvalidPersona = errors.New("chat: persona has no role")
)

type State string

const (
	StateReady         State = "ready"
	StateAwaitingReply State = "awaiting_reply"
)

// Session is one conversation with one persona. The message log is
// append-only between resets and only one Send may be in flight at a time.
type Session struct {
	id             string
	persona        models.Persona
	productContext string
	instruction    string
	opener         llm.ChatOpener
	settings

	mu         sync.Mutex
	channel    llm.Channel
	generation uint64
	messages   []models.ChatMessage
	busy       bool
}

// Open starts a session for persona. The greeting is synthesized locally; the
// model is not called until the first Send.
func Open(ctx context.Context, opener llm.ChatOpener, persona models.Persona, productContext string, opts ...Option) (*Session, error) {
	return open(ctx, opener, persona, productContext, newSettings(opts))
}

func open(ctx context.Context, opener llm.ChatOpener, persona models.Persona, productContext string, cfg settings) (*Session, error) {
	if strings.TrimSpace(persona.Role) == "" {
		return nil, ErrInvalidPersona
	}

	s := &Session{
		id:             "chat-" + cfg.ids.Next(),
		persona:        persona,
		productContext: productContext,
		instruction:    SystemInstruction(persona, productContext),
		opener:         opener,
		settings:       cfg,
	}
	s.log = s.log.WithFields(logrus.Fields{"session_id": s.id, "persona_role": persona.Role})

	if err := s.restart(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// restart opens a fresh channel and replaces the transcript with a greeting.
// Any reply still in flight for the previous channel becomes stale.
func (s *Session) restart(ctx context.Context) error {
	channel, err := s.opener.OpenChat(ctx, s.instruction)
	if err != nil {
		return fmt.Errorf("open chat channel: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.channel = channel
	s.busy = false
	s.messages = []models.ChatMessage{s.newMessage(models.RoleModel, Greeting(s.persona))}
	return nil
}

// Reset discards the transcript and reopens the channel.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.restart(ctx); err != nil {
		return err
	}
	s.log.Info("chat session reset")
	return nil
}

// Send appends the user's message right away, then the model's reply. Service
// failures never surface as errors: a fallback message takes the reply's place.
// Blank text returns ErrEmptyMessage and a second Send while one is pending
// returns ErrBusy; neither touches the transcript.
func (s *Session) Send(ctx context.Context, text string) (*models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.metrics.ObserveChat(telemetry.OutcomeBusy)
		return nil, ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, s.newMessage(models.RoleUser, text))
	channel, generation := s.channel, s.generation
	s.mu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "chat.Send")
	defer span.End()
	span.SetAttributes(attribute.String("chat.session_id", s.id))

	reply, err := channel.Send(ctx, text)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = llm.ErrEmptyResponse
	}
	outcome := telemetry.OutcomeOK
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.WithError(err).Warn("chat reply failed, using fallback")
		reply = FallbackReply
		outcome = telemetry.OutcomeFallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.metrics.ObserveChat(telemetry.OutcomeStale)
		s.log.Debug("dropping reply for a reset session")
		return nil, ErrSessionReset
	}

	msg := s.newMessage(models.RoleModel, reply)
	s.messages = append(s.messages, msg)
	s.busy = false
	s.metrics.ObserveChat(outcome)
	return &msg, nil
}

func (s *Session) newMessage(role models.Role, text string) models.ChatMessage {
	return models.NewChatMessage(s.ids.Next(), role, text, s.now())
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Persona() models.Persona {
	return s.persona
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return StateAwaitingReply
	}
	return StateReady
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionSnapshot{
		ID:             s.id,
		Persona:        s.persona,
		ProductContext: s.productContext,
		Messages:       slices.Clone(s.messages),
		Busy:           s.busy,
	}
}
