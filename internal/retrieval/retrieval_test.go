package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-go/pkg/embedding"
)

// fakeEmbedder 按模型名返回预设结果并记录调用。
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	vectors func(texts []string, taskType embedding.TaskType) [][]float32
}

func (f *fakeEmbedder) CreateEmbeddings(ctx context.Context, model string, texts []string, taskType embedding.TaskType) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model+":"+string(taskType))
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fail[model] {
		return nil, errors.New(model + " unavailable")
	}
	return f.vectors(texts, taskType), nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func constVectors(texts []string, _ embedding.TaskType) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out
}

func TestSplitChunks(t *testing.T) {
	long := words(11)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"keeps long paragraphs", long + "\n\n" + long, []string{long, long}},
		{"drops short and blank", long + "\n\n" + words(10) + "\n\n   \n\n", []string{long}},
		{"falls back to whole text", "short one\n\nshort two", []string{"short one\n\nshort two"}},
		{"empty text", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitChunks(tt.text))
		})
	}
}

func TestGetOrCreateCachesPerDocument(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors}
	e := NewEngine(f, "primary", "fallback", NewCache())

	first := e.GetOrCreateDocumentEmbeddings(context.Background(), 1, words(20))
	second := e.GetOrCreateDocumentEmbeddings(context.Background(), 1, "ignored")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, []string{"primary:retrieval_document"}, f.calls)
	assert.Len(t, first.Vectors, len(first.Chunks))
}

func TestGetOrCreateFallsBack(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors, fail: map[string]bool{"primary": true}}
	e := NewEngine(f, "primary", "fallback", NewCache())

	set := e.GetOrCreateDocumentEmbeddings(context.Background(), 1, words(20))
	assert.False(t, set.Empty())
	assert.Equal(t, []string{"primary:retrieval_document", "fallback:retrieval_document"}, f.calls)
}

func TestGetOrCreateCachesEmptyOnTotalFailure(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors, fail: map[string]bool{"primary": true, "fallback": true}}
	cache := NewCache()
	e := NewEngine(f, "primary", "fallback", cache)

	set := e.GetOrCreateDocumentEmbeddings(context.Background(), 7, words(20))
	assert.True(t, set.Empty())

	// 失败结果同样被缓存，不会再次调用
	_ = e.GetOrCreateDocumentEmbeddings(context.Background(), 7, words(20))
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrCreateDoesNotCacheCancelledRequest(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors}
	cache := NewCache()
	e := NewEngine(f, "primary", "fallback", cache)
	text := words(20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := e.GetOrCreateDocumentEmbeddings(ctx, 1, text)
	assert.True(t, set.Empty())
	assert.Equal(t, []string{"primary:retrieval_document"}, f.calls, "fallback must not run on a cancelled context")
	_, cached := cache.Get(1)
	assert.False(t, cached)

	set = e.GetOrCreateDocumentEmbeddings(context.Background(), 1, text)
	require.False(t, set.Empty())
	assert.Equal(t, []string{text}, set.Chunks)
	assert.Equal(t, []string{text}, e.FindRelevantChunks(context.Background(), "query", set.Chunks, set.Vectors))
}

func TestFindRelevantChunksEmptyContext(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors}
	e := NewEngine(f, "primary", "fallback", nil)

	assert.Equal(t, []string{ContextUnavailable}, e.FindRelevantChunks(context.Background(), "q", nil, nil))
	assert.Equal(t, []string{ContextUnavailable}, e.FindRelevantChunks(context.Background(), "q", []string{"a"}, nil))
	assert.Zero(t, f.callCount())
}

func TestFindRelevantChunksRanksTopThree(t *testing.T) {
	f := &fakeEmbedder{vectors: func(texts []string, _ embedding.TaskType) [][]float32 {
		return [][]float32{{1, 0}}
	}}
	e := NewEngine(f, "primary", "fallback", nil)

	chunks := []string{"c0", "c1", "c2", "c3", "c4"}
	vectors := [][]float32{
		{0, 1},     // 0
		{1, 0},     // 1
		{0.5, 0.5}, // 0.707
		{1, 0},     // 1, 与 c1 同分
		{0, 0},     // 零向量
	}
	got := e.FindRelevantChunks(context.Background(), "q", chunks, vectors)
	assert.Equal(t, []string{"c1", "c3", "c2"}, got)
	assert.Equal(t, []string{"primary:retrieval_query"}, f.calls)
}

func TestFindRelevantChunksFewerThanK(t *testing.T) {
	f := &fakeEmbedder{vectors: func([]string, embedding.TaskType) [][]float32 { return [][]float32{{1, 0}} }}
	e := NewEngine(f, "primary", "fallback", nil)

	got := e.FindRelevantChunks(context.Background(), "q", []string{"a", "b"}, [][]float32{{0, 1}, {1, 0}})
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestFindRelevantChunksErrorSentinel(t *testing.T) {
	t.Run("both models fail", func(t *testing.T) {
		f := &fakeEmbedder{vectors: constVectors, fail: map[string]bool{"primary": true, "fallback": true}}
		e := NewEngine(f, "primary", "fallback", nil)
		got := e.FindRelevantChunks(context.Background(), "q", []string{"a"}, [][]float32{{1, 0}})
		require.Len(t, got, 1)
		assert.True(t, strings.HasPrefix(got[0], "(Error retrieving document context: "))
	})
	t.Run("dimension mismatch", func(t *testing.T) {
		f := &fakeEmbedder{vectors: func([]string, embedding.TaskType) [][]float32 { return [][]float32{{1, 0, 0}} }}
		e := NewEngine(f, "primary", "fallback", nil)
		got := e.FindRelevantChunks(context.Background(), "q", []string{"a"}, [][]float32{{1, 0}})
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "dimension mismatch")
	})
}

func TestCosineZeroNorm(t *testing.T) {
	s, err := Cosine([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	s, err = Cosine([]float32{2, 0}, []float32{3, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)
}

func TestCacheConcurrentAccess(t *testing.T) {
	f := &fakeEmbedder{vectors: constVectors}
	e := NewEngine(f, "primary", "fallback", NewCache())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set := e.GetOrCreateDocumentEmbeddings(context.Background(), 3, words(20))
			assert.False(t, set.Empty())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, e.cache.Len())
}
