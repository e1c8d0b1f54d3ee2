package recall

import (
	"context"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/similarity"
)

// ContentSource 基于类型标签 TF-IDF 相似度召回与种子最相似的条目。
type ContentSource struct {
	Model   *similarity.ContentModel
	Catalog *catalog.Catalog

	// Overfetch 为超取倍数，混合模式下为 2
	Overfetch int
}

func (s *ContentSource) Name() string { return "content" }

func (s *ContentSource) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	ns, err := s.Model.TopSimilar(rctx.SeedID, size(rctx, s.Overfetch))
	if err != nil {
		return nil, err
	}
	return toItems(s.Catalog, ns)
}
