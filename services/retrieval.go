package services

import (
	"sort"
	"strings"
)

// Document is a retrievable knowledge snippet.
type Document struct {
	ID      uint
	Title   string
	Content string
	Tags    string
}

// Ranker scores documents against a query and returns the best matches.
type Ranker interface {
	Rank(query string, docs []Document, topN int) []Document
}

const titleBoost = 3

// KeywordRanker scores by keyword overlap: one point per shared token, with
// title hits weighted higher. Zero-score documents are dropped rather than
// padding the result.
type KeywordRanker struct{}

func (KeywordRanker) Rank(query string, docs []Document, topN int) []Document {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || topN <= 0 {
		return nil
	}

	type scored struct {
		doc   Document
		score int
	}
	var hits []scored
	for _, doc := range docs {
		title := tokenSet(tokenize(doc.Title))
		body := tokenSet(tokenize(doc.Content + " " + doc.Tags))
		score := 0
		for _, t := range queryTokens {
			if title[t] {
				score += titleBoost
			} else if body[t] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > topN {
		hits = hits[:topN]
	}
	out := make([]Document, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.doc)
	}
	return out
}

// tokenize lowercases and splits on non-alphanumerics, dropping tokens of two
// characters or fewer so stopword noise stays out of the scores.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
