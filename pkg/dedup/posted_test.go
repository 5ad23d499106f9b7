package dedup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostedSet(t *testing.T) {
	s := NewPostedSet()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("hello"))

	assert.True(t, s.Add("hello"))
	assert.False(t, s.Add("hello"))
	assert.True(t, s.Has("hello"))
	assert.Equal(t, 1, s.Len())
}

func TestPostedSetExactKeys(t *testing.T) {
	s := NewPostedSet("hello")

	assert.False(t, s.Has("Hello"))
	assert.False(t, s.Has("hello "))
	assert.False(t, s.Has(" hello"))
	assert.True(t, s.Has("hello"))
}

func TestPostedSetItemsOrder(t *testing.T) {
	s := NewPostedSet("b", "a")
	s.Add("c")
	s.Add("a")

	items := s.Items()
	assert.Equal(t, []string{"b", "a", "c"}, items)

	items[0] = "mutated"
	assert.Equal(t, "b", s.Items()[0])
}

func TestPostedSetConcurrentAdd(t *testing.T) {
	s := NewPostedSet()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("same")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
}
