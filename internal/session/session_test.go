package session

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/testutil"
)

func TestNew_FixedTokenForDeterministicTests(t *testing.T) {
	s := New(testutil.NewFixedTokenGenerator("session-1"), BackendRelational, catalog.Snapshot{})
	assert.Equal(t, "session-1", s.Token)

	d := New(testutil.NewFixedTokenGenerator(""), BackendDocument, catalog.Snapshot{})
	assert.Equal(t, "test-session-default", d.Token)
}

func TestUUIDv7Generator_TokensSortByCreation(t *testing.T) {
	gen := UUIDv7Generator{}
	tokens := make([]string, 5)
	for i := range tokens {
		tokens[i] = gen.Generate()
		parsed, err := uuid.Parse(tokens[i])
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
	assert.True(t, sort.StringsAreSorted(tokens))
}

func TestRegistry_OpenGetClose(t *testing.T) {
	reg := NewRegistry(UUIDv7Generator{})
	cat := catalog.Snapshot{Entities: []catalog.Entity{{Name: "orders"}}}

	s := reg.Open(BackendRelational, cat)
	require.NotEmpty(t, s.Token)
	assert.Equal(t, BackendRelational, s.Backend)

	assert.Same(t, s, reg.Get(s.Token))
	reg.Close(s.Token)
	assert.Nil(t, reg.Get(s.Token))
}

func TestSession_DoSerializesRequests(t *testing.T) {
	s := New(UUIDv7Generator{}, BackendDocument, catalog.Snapshot{})

	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Do(func() error {
				order = append(order, n)
				return nil
			})
		}(i)
	}
	wg.Wait()
	assert.Len(t, order, 20)
}

func TestBackend_Valid(t *testing.T) {
	assert.True(t, BackendRelational.Valid())
	assert.True(t, BackendDocument.Valid())
	assert.False(t, Backend("graph").Valid())
}
