package service

import (
	"cmp"
	"slices"
)

// RankItem is an entity to be ranked by score.
type RankItem struct {
	ID    string
	Score float64
}

// RankedItem carries the 1-based position assigned to an entity.
type RankedItem struct {
	ID       string
	Position int
}

// Rank orders items by descending score and numbers them 1..N. Equal scores never share
// a position: the item that appears first in the input gets the better one.
func Rank(items []RankItem) []RankedItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b RankItem) int {
		return cmp.Compare(b.Score, a.Score)
	})
	ranked := make([]RankedItem, len(sorted))
	for i, item := range sorted {
		ranked[i] = RankedItem{ID: item.ID, Position: i + 1}
	}
	return ranked
}
