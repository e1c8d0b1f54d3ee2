package similarity

import (
	"regexp"
	"sort"
	"strings"
)

// 两个及以上连续的字母、数字或下划线构成一个词
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer 把文本切分为小写词，并过滤停用词。
type Tokenizer struct {
	StopWords map[string]struct{}
}

// NewTokenizer 返回使用英文停用词表的 Tokenizer。
func NewTokenizer() *Tokenizer {
	return &Tokenizer{StopWords: EnglishStopWords}
}

// Tokenize 切分文本。'|' 作为分隔符处理。
func (t *Tokenizer) Tokenize(doc string) []string {
	doc = strings.ToLower(strings.ReplaceAll(doc, "|", " "))
	raw := tokenPattern.FindAllString(doc, -1)
	out := raw[:0]
	for _, w := range raw {
		if _, stop := t.StopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Vocabulary 是词到列号的映射，列号按词的字典序分配。
type Vocabulary struct {
	terms []string
	index map[string]int32
}

func newVocabulary(docs [][]string) *Vocabulary {
	set := make(map[string]struct{})
	for _, d := range docs {
		for _, w := range d {
			set[w] = struct{}{}
		}
	}
	terms := make([]string, 0, len(set))
	for w := range set {
		terms = append(terms, w)
	}
	sort.Strings(terms)
	index := make(map[string]int32, len(terms))
	for i, w := range terms {
		index[w] = int32(i)
	}
	return &Vocabulary{terms: terms, index: index}
}

func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms 返回按列号排列的词表。
func (v *Vocabulary) Terms() []string { return v.terms }

// EnglishStopWords 是常用英文停用词表。
var EnglishStopWords = func() map[string]struct{} {
	words := strings.Fields(`
a about above across after afterwards again against all almost alone along already also although always am among amongst amoungst amount an and another any anyhow anyone anything anyway anywhere are around as at
back be became because become becomes becoming been before beforehand behind being below beside besides between beyond bill both bottom but by
call can cannot cant co con could couldnt cry de describe detail do done down due during
each eg eight either eleven else elsewhere empty enough etc even ever every everyone everything everywhere except
few fifteen fifty fill find fire first five for former formerly forty found four from front full further
get give go had has hasnt have he hence her here hereafter hereby herein hereupon hers herself him himself his how however hundred
i ie if in inc indeed interest into is it its itself keep last latter latterly least less ltd
made many may me meanwhile might mill mine more moreover most mostly move much must my myself
name namely neither never nevertheless next nine no nobody none noone nor not nothing now nowhere
of off often on once one only onto or other others otherwise our ours ourselves out over own
part per perhaps please put rather re same see seem seemed seeming seems serious several she should show side since sincere six sixty so some somehow someone something sometime sometimes somewhere still such system
take ten than that the their them themselves then thence there thereafter thereby therefore therein thereupon these they thick thin third this those though three through throughout thru thus to together too top toward towards twelve twenty two
un under until up upon us very via was we well were what whatever when whence whenever where whereafter whereas whereby wherein whereupon wherever whether which while whither who whoever whole whom whose why will with within without would
yet you your yours yourself yourselves`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
