package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoCompleterComplete(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage(" ## Red Hat Summary ", nil)}
	c := NewEinoCompleterWithModel(fake)

	text, err := c.Complete(context.Background(), "be red", "document")
	require.NoError(t, err)
	assert.Equal(t, "## Red Hat Summary", text)

	require.Len(t, fake.input, 2)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, "be red", fake.input[0].Content)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, "document", fake.input[1].Content)
}

func TestEinoCompleterErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewEinoCompleterWithModel(&fakeChatModel{err: boom}).Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, boom))

	_, err = NewEinoCompleterWithModel(&fakeChatModel{reply: schema.AssistantMessage("", nil)}).Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrEmptyResponse))

	_, err = NewEinoCompleterWithModel(&fakeChatModel{}).Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
