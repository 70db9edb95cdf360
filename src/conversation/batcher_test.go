package conversation

import (
	"context"
	"restaurant_chat/src/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcherMergesBurst(t *testing.T) {
	batcher := NewBatcher()
	window := 80 * time.Millisecond

	first := batcher.Submit("conv_x", model.UserMessage("a"), window)
	second := batcher.Submit("conv_x", model.UserMessage("b"), window)
	third := batcher.Submit("conv_x", model.UserMessage("c"), window)

	assert.True(t, first.Owner())
	assert.False(t, second.Owner())
	assert.False(t, third.Owner())

	got, err := first.Wait(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	combined := Combine(got)
	assert.Equal(t, model.RoleUser, combined.Role)
	assert.Equal(t, "a\n\nb\n\nc", combined.Content)

	joined, err := third.Wait(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, got, joined)
	assert.False(t, batcher.Pending("conv_x"))
}

func TestBatcherKeysAreIsolated(t *testing.T) {
	batcher := NewBatcher()
	window := 50 * time.Millisecond

	one := batcher.Submit("conv_one", model.UserMessage("first"), window)
	two := batcher.Submit("conv_two", model.UserMessage("second"), window)

	assert.True(t, one.Owner())
	assert.True(t, two.Owner())

	gotOne, err := one.Wait(context.Background(), 0)
	require.NoError(t, err)
	gotTwo, err := two.Wait(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, []model.Message{model.UserMessage("first")}, gotOne)
	assert.Equal(t, []model.Message{model.UserMessage("second")}, gotTwo)
}

func TestBatcherRearmsTimer(t *testing.T) {
	batcher := NewBatcher()
	window := 60 * time.Millisecond

	owner := batcher.Submit("conv_rearm", model.UserMessage("a"), window)
	time.Sleep(40 * time.Millisecond)
	batcher.Submit("conv_rearm", model.UserMessage("b"), window)

	// The first timer would have fired by now had it not been rearmed
	time.Sleep(35 * time.Millisecond)
	select {
	case <-owner.Done():
		t.Fatal("batch resolved before the rearmed window elapsed")
	default:
	}

	got, err := owner.Wait(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBatcherFallbackFlushesOnce(t *testing.T) {
	batcher := NewBatcher()

	owner := batcher.Submit("conv_fast", model.UserMessage("hello"), time.Second)
	got, err := owner.Wait(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []model.Message{model.UserMessage("hello")}, got)

	// The batch is gone, so a later message starts a fresh one
	assert.False(t, batcher.Pending("conv_fast"))
	next := batcher.Submit("conv_fast", model.UserMessage("again"), time.Second)
	assert.True(t, next.Owner())
	assert.Equal(t, []model.Message{model.UserMessage("again")}, batcher.Flush("conv_fast"))
}

func TestBatcherStaleBatchResolvedWhenDisplaced(t *testing.T) {
	batcher := NewBatcher()
	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	batcher.now = func() time.Time { return clock }

	old := batcher.Submit("conv_stale", model.UserMessage("old"), time.Hour)

	clock = clock.Add(2 * time.Hour)
	fresh := batcher.Submit("conv_stale", model.UserMessage("new"), time.Hour)

	select {
	case <-old.Done():
	default:
		t.Fatal("displaced batch was not resolved")
	}

	got, err := old.Wait(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Message{model.UserMessage("old")}, got)
	assert.True(t, fresh.Owner())
	assert.Equal(t, []model.Message{model.UserMessage("new")}, batcher.Flush("conv_stale"))
}

func TestBatcherWaitHonoursContext(t *testing.T) {
	batcher := NewBatcher()
	ticket := batcher.Submit("conv_ctx", model.UserMessage("x"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ticket.Wait(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, batcher.Pending("conv_ctx"))
}

func TestBatcherFlushWithoutPending(t *testing.T) {
	assert.Nil(t, NewBatcher().Flush("nothing"))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, model.UserMessage(""), Combine(nil))

	single := model.Message{Role: model.RoleUser, Content: "only"}
	assert.Equal(t, single, Combine([]model.Message{single}))

	assert.Equal(t, model.UserMessage("x\n\ny"), Combine([]model.Message{
		model.UserMessage("x"),
		model.UserMessage("y"),
	}))
}
