package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"study-assistant-go/pkg/embedding"
	"study-assistant-go/pkg/log"
)

const (
	// TopK 是每次检索返回的最大分块数。
	TopK = 3

	// ContextUnavailable 在文档没有可用分块或向量时返回。
	ContextUnavailable = "(Document context not available)"

	zeroNormEpsilon = 1e-9
)

// Engine 计算并缓存文档分块向量，按余弦相似度检索相关分块。
type Engine struct {
	embedder      embedding.Client
	primaryModel  string
	fallbackModel string
	cache         *Cache
}

// NewEngine 创建检索引擎。cache 由调用方在启动时创建并共享。
func NewEngine(embedder embedding.Client, primaryModel, fallbackModel string, cache *Cache) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	return &Engine{
		embedder:      embedder,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		cache:         cache,
	}
}

// GetOrCreateDocumentEmbeddings 返回文档的分块与向量。
// 每个文档在进程内最多计算一次；主模型失败时改用备用模型，两者都失败则缓存空集合。
// ctx 已取消时返回空集合且不写缓存。
func (e *Engine) GetOrCreateDocumentEmbeddings(ctx context.Context, documentID uint, text string) EmbeddingSet {
	if set, ok := e.cache.Get(documentID); ok {
		return set
	}

	log.Infof("[Retrieval] 为文档 %d 计算分块向量", documentID)
	chunks := SplitChunks(text)
	vectors, err := e.embedWithFallback(ctx, chunks, embedding.TaskRetrievalDocument)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// 请求被取消或超时不代表模型不可用，不写缓存，下次请求重新计算
		log.Warnf("[Retrieval] 文档 %d 向量计算被中断, 不缓存结果: %v", documentID, ctxErr)
		return EmbeddingSet{}
	}
	if err != nil || len(vectors) != len(chunks) {
		if err == nil {
			err = fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
		}
		log.Errorf("[Retrieval] 文档 %d 向量计算失败, 缓存空集合: %v", documentID, err)
		empty := EmbeddingSet{}
		e.cache.Put(documentID, empty)
		return empty
	}

	set := EmbeddingSet{Chunks: chunks, Vectors: vectors}
	e.cache.Put(documentID, set)
	log.Infof("[Retrieval] 文档 %d 分块向量已缓存, 分块数: %d", documentID, len(chunks))
	return set
}

// FindRelevantChunks 返回与 query 最相似的至多 3 个分块，按相似度降序，相同分数保持原顺序。
// 不返回错误：没有上下文或检索失败时返回只含一条提示文本的切片。
func (e *Engine) FindRelevantChunks(ctx context.Context, query string, chunks []string, vectors [][]float32) []string {
	if len(chunks) == 0 || len(vectors) == 0 {
		return []string{ContextUnavailable}
	}

	queryVecs, err := e.embedWithFallback(ctx, []string{query}, embedding.TaskRetrievalQuery)
	if err == nil && len(queryVecs) != 1 {
		err = errors.New("query embedding missing")
	}
	if err != nil {
		log.Errorf("[Retrieval] 查询向量计算失败: %v", err)
		return []string{errorSentinel(err)}
	}

	ranked, err := Rank(queryVecs[0], vectors)
	if err != nil {
		log.Errorf("[Retrieval] 相似度计算失败: %v", err)
		return []string{errorSentinel(err)}
	}

	out := make([]string, 0, TopK)
	for _, idx := range ranked {
		if idx >= len(chunks) {
			return []string{errorSentinel(fmt.Errorf("index %d out of range for %d chunks", idx, len(chunks)))}
		}
		out = append(out, chunks[idx])
		if len(out) == TopK {
			break
		}
	}
	return out
}

func (e *Engine) embedWithFallback(ctx context.Context, texts []string, taskType embedding.TaskType) ([][]float32, error) {
	vectors, err := e.embedder.CreateEmbeddings(ctx, e.primaryModel, texts, taskType)
	if err == nil {
		return vectors, nil
	}
	if ctx.Err() != nil || e.fallbackModel == "" {
		return nil, err
	}
	log.Warnf("[Retrieval] 主模型 %s 失败, 尝试备用模型 %s: %v", e.primaryModel, e.fallbackModel, err)
	vectors, fbErr := e.embedder.CreateEmbeddings(ctx, e.fallbackModel, texts, taskType)
	if fbErr != nil {
		return nil, fmt.Errorf("primary: %v; fallback: %w", err, fbErr)
	}
	return vectors, nil
}

func errorSentinel(err error) string {
	return fmt.Sprintf("(Error retrieving document context: %v)", err)
}

// Rank 返回全部分块下标，按与 query 的余弦相似度降序排列，分数相同按下标升序。
func Rank(query []float32, vectors [][]float32) ([]int, error) {
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		s, err := Cosine(v, query)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		scores[i] = s
	}

	indices := make([]int, len(vectors))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})
	return indices, nil
}

// Cosine 计算 a 与 b 的余弦相似度。范数乘积为 0 时以 1e-9 代替，因此零向量得分为 0。
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	norms := math.Sqrt(na) * math.Sqrt(nb)
	if norms == 0 {
		norms = zeroNormEpsilon
	}
	s := dot / norms
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, errors.New("similarity is not a finite number")
	}
	return s, nil
}
