package engine

import (
	"time"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/similarity"
)

// Snapshot 是一份只读的目录快照及由其构建的两个相似度模型。
// 构建完成后不再修改，可被并发请求共享。
type Snapshot struct {
	Catalog     *catalog.Catalog
	Content     *similarity.ContentModel
	Interaction *similarity.InteractionModel
	BuiltAt     time.Time
}

// Build 由目录构建快照，tok 为 nil 时使用默认分词器。
func Build(c *catalog.Catalog, tok *similarity.Tokenizer) *Snapshot {
	if tok == nil {
		tok = similarity.NewTokenizer()
	}

	start := time.Now()
	content := similarity.NewContentModel(c, tok)
	metrics.ObserveSince(metrics.ModelBuildDuration.WithLabelValues("content"), start)

	start = time.Now()
	interaction := similarity.NewInteractionModel(c)
	metrics.ObserveSince(metrics.ModelBuildDuration.WithLabelValues("interaction"), start)

	metrics.CatalogItems.Set(float64(c.Len()))
	logging.Info().
		Int("items", c.Len()).
		Int("terms", content.Vocabulary().Len()).
		Int("interaction_items", interaction.Items()).
		Int("actors", interaction.Actors()).
		Msg("engine: models built")

	return &Snapshot{
		Catalog:     c,
		Content:     content,
		Interaction: interaction,
		BuiltAt:     time.Now(),
	}
}
