package core

import "strings"

// Movie 是目录中的一个条目。
//
// Year 为 0 表示上映年份未知；Genres 可以为空，但不为 nil。
// TMDBID / IMDBID 为外部标识，可选，用于媒体解析时的精确查询。
type Movie struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Year   int      `json:"year,omitempty"`
	Genres []string `json:"genres"`
	TMDBID int64    `json:"tmdb_id,omitempty"`
	IMDBID string   `json:"imdb_id,omitempty"`
}

// GenreDocument 返回用于内容建模的文本：类型标签以空格拼接。
func (m *Movie) GenreDocument() string {
	return strings.Join(m.Genres, " ")
}

// Interaction 表示一次 (物品, 行为者, 权重) 交互，例如评分。
type Interaction struct {
	ItemID  int64   `json:"item_id"`
	ActorID int64   `json:"actor_id"`
	Weight  float64 `json:"weight"`
}
