package ai

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeModel streams fixed fragments and optionally fails afterwards.
type fakeModel struct {
	fragments []string
	failAfter error
	streamErr error

	input []*schema.Message
	opts  *model.Options
	calls int
}

func (f *fakeModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return nil, errors.New("generate not supported")
}

func (f *fakeModel) Stream(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.calls++
	f.input = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	if f.streamErr != nil {
		return nil, f.streamErr
	}

	sr, sw := schema.Pipe[*schema.Message](len(f.fragments) + 1)
	go func() {
		defer sw.Close()
		for _, fragment := range f.fragments {
			sw.Send(schema.AssistantMessage(fragment, nil), nil)
		}
		if f.failAfter != nil {
			sw.Send(nil, f.failAfter)
		}
	}()
	return sr, nil
}
