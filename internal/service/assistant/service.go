package assistant

import (
	"context"
	"errors"
	"log"

	"github.com/zhouzirui/shopease/backend/internal/analysis/language"
	"github.com/zhouzirui/shopease/backend/internal/analysis/suggestion"
	"github.com/zhouzirui/shopease/backend/internal/model/chat"
	"github.com/zhouzirui/shopease/backend/internal/service/ai"
	"github.com/zhouzirui/shopease/backend/internal/service/session"
)

// Result describes a finished turn.
type Result struct {
	SessionID   string                  `json:"sessionId"`
	Reply       string                  `json:"reply"`
	Failed      bool                    `json:"failed"`
	Language    language.Language       `json:"language"`
	Suggestions []suggestion.Suggestion `json:"suggestions"`
}

// Service runs one conversation turn end to end.
type Service struct {
	ctrl       *session.Controller
	builder    *ai.Builder
	completion *ai.Service
}

// NewService wires the turn pipeline.
func NewService(ctrl *session.Controller, builder *ai.Builder, completion *ai.Service) (*Service, error) {
	if ctrl == nil || builder == nil || completion == nil {
		return nil, errors.New("controller, builder and completion service are required")
	}
	return &Service{ctrl: ctrl, builder: builder, completion: completion}, nil
}

// Controller exposes the conversation the service operates on.
func (s *Service) Controller() *session.Controller {
	return s.ctrl
}

// Respond submits userText, streams the reply through onFragment and appends
// it to the conversation. Completion failures are part of the reply text, so
// an error is only returned when the turn could not be opened or was replaced.
func (s *Service) Respond(ctx context.Context, userText string, onFragment func(string)) (Result, error) {
	turn, err := s.ctrl.Submit(userText)
	if err != nil {
		return Result{}, err
	}

	history, err := s.ctrl.History(turn)
	if err != nil {
		return Result{}, err
	}

	// 流一旦开始就读到结束，客户端断开不会中断本轮对话。
	reply := s.completion.Stream(context.WithoutCancel(ctx), s.builder.Build(history))
	text := reply.Collect(onFragment)

	if err := s.ctrl.CompleteTurn(turn, text); err != nil {
		return Result{}, err
	}

	lang := language.Detect(turn.UserText)
	log.Printf("[assistant] turn complete session=%s language=%s bytes=%d failed=%t", turn.SessionID, lang, len(text), reply.Err() != nil)

	return Result{
		SessionID:   turn.SessionID,
		Reply:       text,
		Failed:      reply.Err() != nil,
		Language:    lang,
		Suggestions: nonNil(suggestion.Suggest(text, lang)),
	}, nil
}

// SuggestFor returns quick replies for the latest assistant message, using the
// language of the user message it answers. The opening greeting gets none.
func SuggestFor(messages []chat.Message, processing bool) []suggestion.Suggestion {
	last := len(messages) - 1
	if processing || last < 1 || messages[last].Role != chat.RoleAssistant {
		return []suggestion.Suggestion{}
	}

	lang := language.English
	if prev := messages[last-1]; prev.Role == chat.RoleUser {
		lang = language.Detect(prev.Content)
	}
	return nonNil(suggestion.Suggest(messages[last].Content, lang))
}

func nonNil(s []suggestion.Suggestion) []suggestion.Suggestion {
	if s == nil {
		return []suggestion.Suggestion{}
	}
	return s
}
