// Package schema file: internal/service/schema/pruner.go
//
// 为自然语言问题挑选相关的表，缩小交给查询生成器的结构上下文。
// 这是启发式打分，不是语义检索。
package schema

import (
	"DBTalk/internal/core/domain"
	"regexp"
	"sort"
	"strings"
)

const (
	// maxDirectTables 表数量不超过该值时不做裁剪
	maxDirectTables = 5
	// minScore 低于该分数的表不进入候选
	minScore = 50
	// topTables 按得分保留的主表数量
	topTables = 3
	// expandScore 主表得分达到该值才沿外键扩展一跳
	expandScore = 90

	literalNameScore = 80
	formNameScore    = 60
	emailScore       = 70
	nameColumnScore  = 40
	idColumnScore    = 10
	tokenTableScore  = 30
	tokenColumnScore = 15
	semanticScore    = 25
)

var stopWords = map[string]struct{}{
	"can": {}, "you": {}, "tell": {}, "me": {}, "the": {}, "of": {}, "is": {}, "whose": {},
	"a": {}, "an": {}, "to": {}, "for": {}, "with": {}, "show": {}, "give": {}, "get": {},
	"find": {}, "what": {}, "if": {}, "all": {}, "any": {}, "and": {}, "or": {},
}

// semanticHints 表名包含 key 时，问题中出现的每个同义词各加一次分
var semanticHints = []struct {
	key   string
	words []string
}{
	{key: "user", words: []string{"user", "users", "account", "profile", "member", "customer"}},
	{key: "order", words: []string{"order", "orders", "purchase", "transaction"}},
	{key: "product", words: []string{"product", "item"}},
	{key: "payment", words: []string{"payment", "billing"}},
}

var nonLetter = regexp.MustCompile(`[^a-z]`)

type scoredTable struct {
	name  string
	score int
}

// Prune 返回与问题相关的子结构。
// 实体不超过 5 个时原样返回；没有任何表达到阈值时返回空表集合，绝不回退到全量结构。
func Prune(s *domain.UnifiedSchema, message string) *domain.UnifiedSchema {
	if s == nil || len(s.Tables) <= maxDirectTables {
		return s
	}

	lowered := strings.ToLower(message)
	tokens := tokenize(lowered)

	names := s.TableNames()
	sort.Strings(names)

	candidates := make([]scoredTable, 0, len(names))
	for _, name := range names {
		score := Score(name, s.Tables[name], lowered, tokens)
		if score < minScore {
			continue
		}
		candidates = append(candidates, scoredTable{name: name, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > topTables {
		candidates = candidates[:topTables]
	}

	out := &domain.UnifiedSchema{Source: s.Source, Tables: make(map[string]*domain.TableSchema)}
	for _, c := range candidates {
		out.Tables[c.name] = s.Tables[c.name]
	}
	for _, c := range candidates {
		if c.score < expandScore {
			continue
		}
		for _, col := range s.Tables[c.name].Columns {
			for _, fk := range col.ForeignKeys {
				if target, ok := s.Tables[fk.ReferencesTable]; ok {
					out.Tables[fk.ReferencesTable] = target
				}
			}
		}
	}
	return out
}

// tokenize 小写分词，去掉非字母字符、长度不超过 2 的词和停用词
func tokenize(lowered string) []string {
	var tokens []string
	for _, raw := range strings.Fields(lowered) {
		w := nonLetter.ReplaceAllString(raw, "")
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Score 计算单张表对问题的相关度。lowered 为小写后的问题原文，tokens 为分词结果。
func Score(name string, table *domain.TableSchema, lowered string, tokens []string) int {
	lname := strings.ToLower(name)
	singular := strings.TrimSuffix(lname, "s")
	plural := singular + "s"

	score := 0
	if strings.Contains(lowered, lname) {
		score += literalNameScore
	}
	if strings.Contains(lowered, singular) || strings.Contains(lowered, plural) {
		score += formNameScore
	}

	if strings.Contains(lowered, "email") && hasColumn(table, func(c string) bool { return strings.Contains(c, "email") }) {
		score += emailScore
	}
	if strings.Contains(lowered, "name") && hasColumn(table, func(c string) bool { return strings.Contains(c, "name") }) {
		score += nameColumnScore
	}
	if strings.Contains(lowered, "id") && hasColumn(table, func(c string) bool { return c == "id" }) {
		score += idColumnScore
	}

	for _, tok := range tokens {
		if strings.Contains(lname, tok) {
			score += tokenTableScore
		}
		if hasColumn(table, func(c string) bool { return strings.Contains(c, tok) }) {
			score += tokenColumnScore
		}
	}

	for _, hint := range semanticHints {
		if !strings.Contains(lname, hint.key) {
			continue
		}
		for _, syn := range hint.words {
			if strings.Contains(lowered, syn) {
				score += semanticScore
			}
		}
	}
	return score
}

func hasColumn(table *domain.TableSchema, match func(lowerName string) bool) bool {
	if table == nil {
		return false
	}
	for _, col := range table.Columns {
		if match(strings.ToLower(col.Name)) {
			return true
		}
	}
	return false
}
