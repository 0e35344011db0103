package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func positionsOf(ranked []RankedItem) map[string]int {
	out := make(map[string]int, len(ranked))
	for _, r := range ranked {
		out[r.ID] = r.Position
	}
	return out
}

func TestRankBreaksTiesByInputOrder(t *testing.T) {
	ranked := Rank([]RankItem{{ID: "A", Score: 70}, {ID: "B", Score: 70}, {ID: "C", Score: 90}})

	assert.Equal(t, []RankedItem{{ID: "C", Position: 1}, {ID: "A", Position: 2}, {ID: "B", Position: 3}}, ranked)
}

func TestRankAssignsEveryPositionOnce(t *testing.T) {
	items := []RankItem{
		{ID: "a", Score: 50}, {ID: "b", Score: 50}, {ID: "c", Score: 50},
		{ID: "d", Score: 10}, {ID: "e", Score: 99.5}, {ID: "f", Score: 0},
	}
	ranked := Rank(items)

	seen := make(map[int]bool)
	for _, r := range ranked {
		assert.False(t, seen[r.Position], "position %d assigned twice", r.Position)
		seen[r.Position] = true
	}
	for p := 1; p <= len(items); p++ {
		assert.True(t, seen[p], "position %d missing", p)
	}
	pos := positionsOf(ranked)
	assert.Equal(t, 1, pos["e"])
	assert.Equal(t, []int{2, 3, 4}, []int{pos["a"], pos["b"], pos["c"]})
	assert.Equal(t, 6, pos["f"])
}

func TestRankDoesNotMutateInput(t *testing.T) {
	items := []RankItem{{ID: "low", Score: 1}, {ID: "high", Score: 2}}
	Rank(items)
	assert.Equal(t, "low", items[0].ID)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
