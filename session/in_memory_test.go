package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shopguard/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Empty(t, sess.History())
}

func TestInMemoryStore_AppendTurnPersists(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.AppendTurn("s1", core.NewUserTurn("hello")))
	require.NoError(t, store.AppendTurn("s1", core.NewAssistantTurn("hi there")))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	turns := sess.History()
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "hi there", turns[1].Content)
	assert.Equal(t, "hello", sess.LastUserMessage())
}

func TestInMemoryStore_GetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.AppendTurn("s1", core.NewUserTurn("original")))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	sess.Append(core.NewUserTurn("mutation on the clone"))

	fresh, err := store.Get("s1")
	require.NoError(t, err)
	assert.Len(t, fresh.History(), 1, "mutating a returned session must not affect the store")
}

func TestInMemoryStore_CreateResetsSession(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.AppendTurn("s1", core.NewUserTurn("old history")))

	sess, err := store.Create("s1")
	require.NoError(t, err)
	assert.Empty(t, sess.History())

	fresh, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.History())
}

func TestInMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("s%d", n%5)
			_ = store.AppendTurn(sessionID, core.NewUserTurn("msg"))
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 5; i++ {
		sess, err := store.Get(fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		total += len(sess.History())
	}
	assert.Equal(t, 50, total)
}

func TestInMemoryStore_ConcurrentGetsNeverReset(t *testing.T) {
	store := NewInMemoryStore()

	// Racing first-touch Gets on the same id must converge on one session
	// instead of replacing it and dropping turns appended in between.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Get("shared")
			_ = store.AppendTurn("shared", core.NewUserTurn("msg"))
		}()
	}
	wg.Wait()

	sess, err := store.Get("shared")
	require.NoError(t, err)
	assert.Len(t, sess.History(), 50)
}
