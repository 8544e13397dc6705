package models

import (
	"encoding/json"
	"time"
)

// Difficulty values a recipe can carry. Anything the extractor cannot
// recognize is stored as DifficultyUnknown.
const (
	DifficultyEasy    = "Easy"
	DifficultyMedium  = "Medium"
	DifficultyHard    = "Hard"
	DifficultyUnknown = "Unknown"
)

const (
	DefaultRecipeTitle  = "Untitled Recipe"
	DefaultNewsTitle    = "Untitled Article"
	DefaultNewsCategory = "General"
)

type Recipe struct {
	ID            int64
	Title         string
	URL           string
	Description   string
	Ingredients   []string
	Instructions  string
	CookingTime   string
	Difficulty    string
	Cuisine       string
	Tags          []string
	ImageURL      string
	Author        string
	PublishedDate string
	ScrapedAt     time.Time
}

type NewsItem struct {
	ID            int64
	Title         string
	URL           string
	Summary       string
	Content       string
	Author        string
	PublishedDate string
	Category      string
	ImageURL      string
	ScrapedAt     time.Time
}

// EncodeList serializes an ordered list field (ingredients, tags) for
// storage. A nil or empty list encodes to "[]" so decode always
// round-trips to a non-nil empty slice.
func EncodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	out, err := json.Marshal(items)
	if err != nil {
		// []string cannot fail to marshal
		return "[]"
	}
	return string(out)
}

func DecodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}
