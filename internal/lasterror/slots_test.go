package lasterror

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

func TestRecordAndLast(t *testing.T) {
	s := NewSlots()

	assert.Nil(t, s.Last("a"))

	s.Record("a", domain.NewExtractError(domain.KindParsing, "extract", "builtin-pdf", "truncated"))

	info := s.Last("a")
	require.NotNil(t, info)
	assert.Equal(t, domain.KindParsing, info.Kind)
	assert.Equal(t, "builtin-pdf", info.Plugin)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSlots()

	s.Record("a", errors.New("failure in a"))
	s.Record("b", errors.New("failure in b"))

	require.NotNil(t, s.Last("a"))
	require.NotNil(t, s.Last("b"))
	assert.Equal(t, "failure in a", s.Last("a").Message)
	assert.Equal(t, "failure in b", s.Last("b").Message)

	s.Clear("a")
	assert.Nil(t, s.Last("a"))
	assert.NotNil(t, s.Last("b"))
}

func TestSuccessClearsSlot(t *testing.T) {
	s := NewSlots()

	s.Record("a", errors.New("boom"))
	require.NotNil(t, s.Last("a"))

	s.Record("a", nil)
	assert.Nil(t, s.Last("a"))
}

func TestReset(t *testing.T) {
	s := NewSlots()
	s.Record("a", errors.New("x"))
	s.Record("b", errors.New("y"))

	s.Reset()
	assert.Nil(t, s.Last("a"))
	assert.Nil(t, s.Last("b"))
}

func TestConcurrentSessions(t *testing.T) {
	s := NewSlots()

	var wg sync.WaitGroup
	for _, session := range []string{"s1", "s2", "s3", "s4"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Record(session, errors.New(session))
				info := s.Last(session)
				assert.NotNil(t, info)
				assert.Equal(t, session, info.Message)
			}
		}(session)
	}
	wg.Wait()
}
