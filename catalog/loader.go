package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/logging"
)

// MovieLens 数据集文件名
const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
	LinksFile   = "links.csv"
)

// Link 是条目的外部标识。
type Link struct {
	IMDBID string
	TMDBID int64
}

// LoadMovieLens 从目录加载 MovieLens 格式的数据集。
// movies.csv 必须存在；ratings.csv / links.csv 缺失时分别视为无交互、无外部标识。
func LoadMovieLens(dir string) (*Catalog, error) {
	movies, err := readFile(filepath.Join(dir, MoviesFile), ReadMovies)
	if err != nil {
		return nil, err
	}

	links, err := readFile(filepath.Join(dir, LinksFile), ReadLinks)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Warn().Str("dir", dir).Msg("catalog: links.csv not found, media lookups fall back to title search")
	case err != nil:
		return nil, err
	}
	for i := range movies {
		if l, ok := links[movies[i].ID]; ok {
			movies[i].IMDBID = l.IMDBID
			movies[i].TMDBID = l.TMDBID
		}
	}

	ratings, err := readFile(filepath.Join(dir, RatingsFile), ReadRatings)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Warn().Str("dir", dir).Msg("catalog: ratings.csv not found, interaction model will be empty")
	case err != nil:
		return nil, err
	}

	c, err := New(movies, ratings)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("dir", dir).
		Int("items", c.Len()).
		Int("interactions", len(c.Interactions())).
		Msg("catalog loaded")
	return c, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// ReadMovies 解析 movieId,title,genres。缺少合法 ID 的行被跳过。
func ReadMovies(r io.Reader) ([]core.Movie, error) {
	var movies []core.Movie
	err := eachRecord(r, []string{"movieId", "title", "genres"}, func(rec []string) bool {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil || id <= 0 {
			return false
		}
		title, year := ParseTitle(rec[1])
		movies = append(movies, core.Movie{
			ID:     id,
			Title:  title,
			Year:   year,
			Genres: ParseGenres(rec[2]),
		})
		return true
	})
	return movies, err
}

// ReadRatings 解析 userId,movieId,rating[,timestamp]。
func ReadRatings(r io.Reader) ([]core.Interaction, error) {
	var out []core.Interaction
	err := eachRecord(r, []string{"userId", "movieId", "rating"}, func(rec []string) bool {
		actor, err1 := strconv.ParseInt(rec[0], 10, 64)
		item, err2 := strconv.ParseInt(rec[1], 10, 64)
		weight, err3 := strconv.ParseFloat(rec[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || item <= 0 {
			return false
		}
		out = append(out, core.Interaction{ItemID: item, ActorID: actor, Weight: weight})
		return true
	})
	return out, err
}

// ReadLinks 解析 movieId,imdbId,tmdbId。imdbId 补齐为 "tt" + 7 位数字。
func ReadLinks(r io.Reader) (map[int64]Link, error) {
	out := make(map[int64]Link)
	err := eachRecord(r, []string{"movieId", "imdbId", "tmdbId"}, func(rec []string) bool {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil || id <= 0 {
			return false
		}
		var l Link
		if imdb, err := strconv.ParseInt(rec[1], 10, 64); err == nil && imdb > 0 {
			l.IMDBID = fmt.Sprintf("tt%07d", imdb)
		}
		if tmdb, err := strconv.ParseInt(rec[2], 10, 64); err == nil && tmdb > 0 {
			l.TMDBID = tmdb
		}
		out[id] = l
		return true
	})
	return out, err
}

// eachRecord 逐行读取 CSV，按表头定位 columns 并以该顺序回调。
// fn 返回 false 表示该行格式错误，被跳过并计数。
func eachRecord(r io.Reader, columns []string, fn func(rec []string) bool) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty file")
		}
		return err
	}
	pos := make([]int, len(columns))
	for i, col := range columns {
		pos[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), col) {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			return fmt.Errorf("missing column %q", col)
		}
	}

	rec := make([]string, len(columns))
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		ok := true
		for i, p := range pos {
			if p >= len(row) {
				ok = false
				break
			}
			rec[i] = strings.TrimSpace(row[p])
		}
		if !ok || !fn(rec) {
			skipped++
		}
	}
	if skipped > 0 {
		logging.Warn().Int("skipped", skipped).Strs("columns", columns).Msg("catalog: malformed rows rejected")
	}
	return nil
}
