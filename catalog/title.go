package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearSuffix    = regexp.MustCompile(`^(.*?)\s*\((\d{4})(?:\s*[-–]\s*\d{0,4})?\)\s*$`)
	articleSuffix = regexp.MustCompile(`^(.+), (The|A|An)$`)
)

// ParseTitle 拆分 "Usual Suspects, The (1995)" 形式的标题，
// 返回 ("The Usual Suspects", 1995)。没有年份时 year 为 0。
func ParseTitle(raw string) (title string, year int) {
	title = strings.TrimSpace(raw)
	if m := yearSuffix.FindStringSubmatch(title); m != nil {
		title = strings.TrimSpace(m[1])
		year, _ = strconv.Atoi(m[2])
	}
	if m := articleSuffix.FindStringSubmatch(title); m != nil {
		title = m[2] + " " + m[1]
	}
	return title, year
}

// ParseGenres 拆分 '|' 分隔的类型标签。
// "(no genres listed)" 原样保留为一个标签，分词后为 genres、listed，
// 因此这类条目彼此相似。
func ParseGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
