package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

// Sampling parameters sent with every completion request.
const (
	Temperature float32 = 0.7
	MaxTokens           = 800
)

// Apology renders a completion failure as assistant content.
func Apology(err error) string {
	return fmt.Sprintf("😔 I apologize, but I encountered an error: %v.", err)
}

// Service drives the hosted completion model.
type Service struct {
	chatModel model.BaseChatModel
}

// NewService wraps a chat model. Any eino model works, which lets tests inject fakes.
func NewService(chatModel model.BaseChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	return &Service{chatModel: chatModel}, nil
}

// Stream prepares a streamed reply for payload. Nothing is sent until the
// fragments are ranged over.
func (s *Service) Stream(ctx context.Context, payload []chat.Message) *Reply {
	return &Reply{ctx: ctx, chatModel: s.chatModel, payload: payload}
}

// Reply is a single-use sequence of reply fragments. It is not safe for
// concurrent use.
type Reply struct {
	ctx       context.Context
	chatModel model.BaseChatModel
	payload   []chat.Message

	started bool
	text    strings.Builder
	err     error
}

// Fragments yields each non-empty fragment in arrival order. A failure at any
// point ends the sequence with one apology fragment instead of an error.
// Ranging a second time yields nothing.
func (r *Reply) Fragments() iter.Seq[string] {
	return func(yield func(string) bool) {
		if r.started {
			return
		}
		r.started = true

		// 调用方提前停止时仍读完整个流，保证 Text 为完整回复。
		emitting := true
		emit := func(fragment string) {
			r.text.WriteString(fragment)
			if emitting && !yield(fragment) {
				emitting = false
			}
		}

		stream, err := r.chatModel.Stream(r.ctx, toSchemaMessages(r.payload),
			model.WithTemperature(Temperature),
			model.WithMaxTokens(MaxTokens),
		)
		if err != nil {
			r.fail(err, emit)
			return
		}
		defer stream.Close()

		for {
			chunk, recvErr := stream.Recv()
			if errors.Is(recvErr, io.EOF) {
				return
			}
			if recvErr != nil {
				r.fail(recvErr, emit)
				return
			}
			if chunk == nil || chunk.Content == "" {
				continue
			}
			emit(chunk.Content)
		}
	}
}

// Text returns everything produced so far, including any apology.
func (r *Reply) Text() string {
	return r.text.String()
}

// Err returns the completion failure that was converted into content, if any.
func (r *Reply) Err() error {
	return r.err
}

// Collect drains the reply, passing each fragment to onFragment when set.
func (r *Reply) Collect(onFragment func(string)) string {
	for fragment := range r.Fragments() {
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	return r.Text()
}

func (r *Reply) fail(err error, emit func(string)) {
	r.err = err
	log.Printf("[ai] completion failed after %d bytes: %v", r.text.Len(), err)
	emit(Apology(err))
}
