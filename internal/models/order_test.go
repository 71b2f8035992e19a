package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressionIndexIncreasesAlongNormalFlow(t *testing.T) {
	flow := []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed}

	prev := -1
	for _, status := range flow {
		idx := status.ProgressionIndex()
		assert.Greater(t, idx, prev, "index for %s must increase", status)
		assert.Less(t, idx, len(statusOrder), "index for %s must stay in range", status)
		prev = idx
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0.0, StatusPending.ProgressPercent())
	assert.Equal(t, 80.0, StatusServed.ProgressPercent())
	assert.Equal(t, 100.0, StatusCompleted.ProgressPercent())
}

func TestCancelledSuppressesProgression(t *testing.T) {
	assert.Equal(t, -1, StatusCancelled.ProgressionIndex())
	assert.Equal(t, 0.0, StatusCancelled.ProgressPercent())
}

func TestTriggersSurvey(t *testing.T) {
	assert.True(t, StatusServed.TriggersSurvey())
	assert.True(t, StatusCompleted.TriggersSurvey())
	assert.False(t, StatusReady.TriggersSurvey())
	assert.False(t, StatusCancelled.TriggersSurvey())
}

func TestIsValid(t *testing.T) {
	for _, status := range statusOrder {
		assert.True(t, status.IsValid())
	}
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, OrderStatus("refunded").IsValid())
}

func TestDisplayKnowsEveryStatus(t *testing.T) {
	for _, status := range append(statusOrder, StatusCancelled) {
		display := status.Display()
		assert.NotEmpty(t, display.Label, "label for %s", status)
		assert.NotEmpty(t, display.Icon, "icon for %s", status)
	}
}
