package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, status QueueStatus, priority QueuePriority, checkIn time.Time, number int) QueueEntry {
	e := QueueEntry{
		Status:      status,
		Priority:    priority,
		CheckInTime: checkIn,
		QueueNumber: number,
	}
	e.ID = id
	return e
}

func TestNextWaitingPrefersHighPriority(t *testing.T) {
	t1 := time.Now()
	t2 := t1.Add(10 * time.Minute)

	// high checked in later than normal but is still called first
	entries := []QueueEntry{
		entry("a", QueueWaiting, PriorityNormal, t1, 1),
		entry("b", QueueWaiting, PriorityHigh, t2, 2),
	}

	next := NextWaiting(entries)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.ID)
}

func TestNextWaitingFIFOWithinBand(t *testing.T) {
	t1 := time.Now()
	t2 := t1.Add(5 * time.Minute)

	entries := []QueueEntry{
		entry("late", QueueWaiting, PriorityNormal, t2, 2),
		entry("early", QueueWaiting, PriorityNormal, t1, 1),
	}

	next := NextWaiting(entries)
	require.NotNil(t, next)
	assert.Equal(t, "early", next.ID)
}

func TestNextWaitingQueueNumberTieBreak(t *testing.T) {
	now := time.Now()

	entries := []QueueEntry{
		entry("second", QueueWaiting, PriorityNormal, now, 4),
		entry("first", QueueWaiting, PriorityNormal, now, 3),
	}

	next := NextWaiting(entries)
	require.NotNil(t, next)
	assert.Equal(t, "first", next.ID)
}

func TestNextWaitingSkipsNonWaiting(t *testing.T) {
	t1 := time.Now()

	entries := []QueueEntry{
		entry("busy", QueueInProgress, PriorityHigh, t1, 1),
		entry("done", QueueCompleted, PriorityHigh, t1, 2),
		entry("gone", QueueCancelled, PriorityHigh, t1, 3),
		entry("next", QueueWaiting, PriorityLow, t1, 4),
	}

	next := NextWaiting(entries)
	require.NotNil(t, next)
	assert.Equal(t, "next", next.ID)
}

func TestNextWaitingEmpty(t *testing.T) {
	assert.Nil(t, NextWaiting(nil))

	entries := []QueueEntry{
		entry("done", QueueCompleted, PriorityNormal, time.Now(), 1),
	}
	assert.Nil(t, NextWaiting(entries))
}

func TestSortQueue(t *testing.T) {
	t1 := time.Now()
	t2 := t1.Add(time.Minute)

	entries := []QueueEntry{
		entry("done", QueueCompleted, PriorityHigh, t1, 1),
		entry("low", QueueWaiting, PriorityLow, t1, 2),
		entry("high", QueueWaiting, PriorityHigh, t2, 3),
		entry("normal", QueueWaiting, PriorityNormal, t1, 4),
	}

	SortQueue(entries)

	var order []string
	for _, e := range entries {
		order = append(order, e.ID)
	}
	assert.Equal(t, []string{"high", "normal", "low", "done"}, order)
}

func TestCanTransitionQueue(t *testing.T) {
	assert.True(t, CanTransitionQueue(QueueWaiting, QueueInProgress))
	assert.True(t, CanTransitionQueue(QueueInProgress, QueueWaiting))
	assert.True(t, CanTransitionQueue(QueueInProgress, QueueCompleted))
	assert.True(t, CanTransitionQueue(QueueWaiting, QueueCancelled))
	assert.False(t, CanTransitionQueue(QueueCompleted, QueueWaiting))
	assert.False(t, CanTransitionQueue(QueueCancelled, QueueInProgress))
	assert.False(t, CanTransitionQueue(QueueCompleted, QueueCompleted))
}
