package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectStatsTrackerFinalize(t *testing.T) {
	tracker := NewSubjectStatsTracker()
	tracker.Record("s1", 55)
	tracker.Record("s2", 70)
	tracker.Record("s3", 70)
	tracker.Record("s4", 40)

	stats := tracker.Finalize()

	assert.Equal(t, 70, stats.Highest)
	assert.Equal(t, 40, stats.Lowest)
	assert.InDelta(t, 58.75, stats.Average, 1e-9)
	assert.Equal(t, map[string]int{"s2": 1, "s3": 2, "s1": 3, "s4": 4}, positionsOf(stats.Ranked))
}

func TestSubjectStatsTrackerEmpty(t *testing.T) {
	stats := NewSubjectStatsTracker().Finalize()

	assert.Zero(t, stats.Highest)
	assert.Zero(t, stats.Lowest)
	assert.Zero(t, stats.Average)
	assert.Empty(t, stats.Ranked)
}

func TestSubjectStatsTrackerSingleResult(t *testing.T) {
	tracker := NewSubjectStatsTracker()
	tracker.Record("only", 0)

	stats := tracker.Finalize()
	assert.Equal(t, 0, stats.Highest)
	assert.Equal(t, 0, stats.Lowest)
	assert.Equal(t, map[string]int{"only": 1}, positionsOf(stats.Ranked))
}
