package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/imagegate/provider"
)

func TestMockProvider_Default(t *testing.T) {
	m := NewMockProvider()
	resp, err := m.Generate(context.Background(), &provider.GenerateRequest{Prompt: "cat", Size: "512x512"})

	require.NoError(t, err)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "UE5H", resp.Images[0].B64JSON)
	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, "512x512", m.LastRequest().Size)
}

func TestMockProvider_ErrorAndCalls(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockProvider().WithError(boom)

	_, err := m.Generate(context.Background(), &provider.GenerateRequest{Prompt: "a"})
	assert.ErrorIs(t, err, boom)
	_, err = m.Generate(context.Background(), &provider.GenerateRequest{Prompt: "b"})
	assert.ErrorIs(t, err, boom)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Request.Prompt)
	assert.ErrorIs(t, calls[1].Error, boom)
	assert.Equal(t, "b", m.LastRequest().Prompt)
}

func TestMockProvider_Images(t *testing.T) {
	m := NewMockProvider().WithImages("QQ==", "Qg==")
	resp, err := m.Generate(context.Background(), &provider.GenerateRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, "Qg==", resp.Images[1].B64JSON)
	assert.Nil(t, NewMockProvider().LastRequest())
}

func TestMockProvider_DelayHonoursContext(t *testing.T) {
	m := NewMockProvider().WithDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Generate(ctx, &provider.GenerateRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockProvider_Factory(t *testing.T) {
	m := NewMockProvider()
	f := m.Factory(provider.VariantLuma)

	p, err := f.Build(provider.VariantLuma, "key", nil)
	require.NoError(t, err)
	assert.Same(t, m, p)
	assert.Equal(t, "mock", p.Name())

	p, err = f.Build(provider.VariantOpenAI, "key", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "mock", p.Name())
}
