package recall

import (
	"context"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/similarity"
)

// InteractionSource 基于交互矩阵余弦近邻召回。种子无交互记录（冷启动）时返回空结果。
type InteractionSource struct {
	Model   *similarity.InteractionModel
	Catalog *catalog.Catalog

	// Overfetch 为超取倍数，混合模式下为 2
	Overfetch int
}

func (s *InteractionSource) Name() string { return "interaction" }

func (s *InteractionSource) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	ns, err := s.Model.TopNeighbors(rctx.SeedID, size(rctx, s.Overfetch))
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 && !s.Model.Has(rctx.SeedID) {
		logging.Ctx(ctx).Debug().Int64("seed", rctx.SeedID).Msg("interaction recall: cold start")
	}
	return toItems(s.Catalog, ns)
}
