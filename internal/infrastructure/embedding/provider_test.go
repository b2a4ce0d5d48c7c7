package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	vector []float64
	err    error
}

func (f *fakeModel) EmbedStrings(_ context.Context, texts []string, _ ...einoembedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func TestProviderInitializesOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	p := NewProvider("fake", "m", 3, func(context.Context) (einoembedding.Embedder, error) {
		calls.Add(1)
		return &fakeModel{vector: []float64{1, 2, 3}}, nil
	})
	assert.False(t, p.Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := p.Embed(context.Background(), "hello")
			assert.NoError(t, err)
			assert.Equal(t, []float32{1, 2, 3}, vec)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, p.Loaded())
}

func TestProviderRetriesFailedInitialization(t *testing.T) {
	var calls atomic.Int32
	p := NewProvider("fake", "m", 0, func(context.Context) (einoembedding.Embedder, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("model download failed")
		}
		return &fakeModel{vector: []float64{1}}, nil
	})

	_, err := p.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, p.Loaded())

	vec, err := p.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProviderRejectsDimensionMismatch(t *testing.T) {
	p := NewProvider("fake", "m", 768, func(context.Context) (einoembedding.Embedder, error) {
		return &fakeModel{vector: []float64{1, 2}}, nil
	})

	_, err := p.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestProviderWithoutFactory(t *testing.T) {
	p := NewProvider("none", "", 768, nil)
	_, err := p.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
