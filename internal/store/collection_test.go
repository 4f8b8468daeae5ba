package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uint
	Name string
	Tags []string
}

func (i item) GetID() uint { return i.ID }

func cloneItem(i item) item {
	i.Tags = append([]string(nil), i.Tags...)
	return i
}

func seeded() *Collection[item] {
	return New("items", []item{{ID: 1, Name: "a"}, {ID: 4, Name: "b"}, {ID: 2, Name: "c"}}, 0, WithClone(cloneItem))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, uint(5), seeded().NextID())
	assert.Equal(t, uint(1), New[item]("empty", nil, 0).NextID())
}

func TestInsert_FrontAndBack(t *testing.T) {
	c := seeded()

	front := c.Insert(Front, func(id uint) item { return item{ID: id, Name: "front"} })
	back := c.Insert(Back, func(id uint) item { return item{ID: id, Name: "back"} })

	assert.Equal(t, uint(5), front.ID)
	assert.Equal(t, uint(6), back.ID)

	all := c.Snapshot()
	assert.Equal(t, "front", all[0].Name)
	assert.Equal(t, "back", all[len(all)-1].Name)
}

func TestInsert_ConcurrentIDsAreUnique(t *testing.T) {
	c := New[item]("items", nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Insert(Back, func(id uint) item { return item{ID: id} })
		}()
	}
	wg.Wait()

	seen := map[uint]bool{}
	for _, it := range c.Snapshot() {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	c := New("items", []item{{ID: 1, Tags: []string{"x"}}}, 0, WithClone(cloneItem))

	snap := c.Snapshot()
	snap[0].Name = "mutated"
	snap[0].Tags[0] = "y"

	stored, ok := c.Find(1)
	require.True(t, ok)
	assert.Empty(t, stored.Name)
	assert.Equal(t, "x", stored.Tags[0])
}

func TestUpdate(t *testing.T) {
	c := seeded()

	updated, found, err := c.Update(4, func(i *item) error {
		i.Name = "renamed"
		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "renamed", updated.Name)

	_, found, err = c.Update(99, func(*item) error { return nil })
	assert.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Update(1, func(i *item) error {
		i.Name = "should not stick"
		return errors.New("boom")
	})
	assert.True(t, found)
	assert.Error(t, err)
	stored, _ := c.Find(1)
	assert.Equal(t, "a", stored.Name)
}

func TestDelete(t *testing.T) {
	c := seeded()

	removed, ok := c.Delete(4)
	require.True(t, ok)
	assert.Equal(t, "b", removed.Name)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Delete(4)
	assert.False(t, ok)
}

func TestFilterAndUpdateWhere(t *testing.T) {
	c := seeded()

	n := c.UpdateWhere(func(i item) bool { return i.ID < 3 }, func(i *item) { i.Name = "low" })
	assert.Equal(t, 2, n)

	low := c.Filter(func(i item) bool { return i.Name == "low" })
	assert.Len(t, low, 2)
}

func TestWait_HonorsLatency(t *testing.T) {
	c := New[item]("slow", nil, 30*time.Millisecond)

	start := time.Now()
	require.NoError(t, c.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_CancelledContext(t *testing.T) {
	c := New[item]("slow", nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWait_ZeroLatencyStillChecksContext(t *testing.T) {
	c := New[item]("fast", nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.Canceled)
}
