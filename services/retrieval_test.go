package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordRankerTitleBoost(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "Parking policy", Content: "where to park your car"},
		{ID: 2, Title: "Office hours", Content: "the parking lot opens at eight"},
		{ID: 3, Title: "Holiday schedule", Content: "nothing relevant here"},
	}

	ranked := KeywordRanker{}.Rank("parking rules", docs, 5)
	// Title match outranks a body match; the unrelated doc is dropped.
	assert.Len(t, ranked, 2)
	assert.EqualValues(t, 1, ranked[0].ID)
	assert.EqualValues(t, 2, ranked[1].ID)
}

func TestKeywordRankerTopN(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "expense report guide", Content: ""},
		{ID: 2, Title: "expense approvals", Content: ""},
		{ID: 3, Title: "expense categories", Content: ""},
		{ID: 4, Title: "expense archive", Content: ""},
	}

	ranked := KeywordRanker{}.Rank("expense", docs, 3)
	assert.Len(t, ranked, 3)
}

func TestKeywordRankerIgnoresShortTokensAndEmptyQuery(t *testing.T) {
	docs := []Document{{ID: 1, Title: "an it of", Content: "to be or"}}

	assert.Empty(t, KeywordRanker{}.Rank("", docs, 3))
	// Every token is two characters or fewer, so nothing can match.
	assert.Empty(t, KeywordRanker{}.Rank("it of to", docs, 3))
}

func TestKeywordRankerUsesTags(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "Misc", Content: "general info", Tags: "vacation,travel"},
		{ID: 2, Title: "Misc", Content: "general info", Tags: ""},
	}

	ranked := KeywordRanker{}.Rank("vacation", docs, 5)
	assert.Len(t, ranked, 1)
	assert.EqualValues(t, 1, ranked[0].ID)
}
