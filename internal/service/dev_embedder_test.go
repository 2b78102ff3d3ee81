package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeterministicEmbedder(t *testing.T) {
	t.Parallel()

	e := NewDeterministicEmbedder(16, zap.NewNop())

	a, err := e.Embed(context.Background(), "как начать разговор")
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := e.Embed(context.Background(), "как начать разговор")
	require.NoError(t, err)
	assert.Equal(t, a, b, "same text must map to the same vector")

	c, err := e.Embed(context.Background(), "другой текст")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
