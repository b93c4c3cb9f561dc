package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContext_Lifecycle(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, "No location loaded", ctx.Location())
	assert.False(t, ctx.Active())
	assert.Empty(t, ctx.ID())

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := ctx.Start("Forest", start)

	assert.NotEmpty(t, id)
	assert.Equal(t, id, ctx.ID())
	assert.Equal(t, "Forest", ctx.Location())
	assert.Equal(t, start, ctx.StartTime())
	assert.True(t, ctx.Active())

	ctx.End()
	assert.False(t, ctx.Active())
	assert.Equal(t, id, ctx.ID(), "id survives End for log correlation")

	assert.NotEqual(t, id, ctx.Start("Customs", start))
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	assert.Equal(t, start, c.Now())

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.Set(start)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now(), "clock never moves backwards")

	c.Set(start.Add(time.Minute))
	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	assert.False(t, got.Before(before))
}
