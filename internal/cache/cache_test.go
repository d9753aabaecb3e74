package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoad_CachesValue(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"tech"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrLoad(c, "niches", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"tech"}, v)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrLoad_ExpiresAfterTTL(t *testing.T) {
	c := New(20 * time.Millisecond)
	calls := 0
	load := func() (int, error) { calls++; return calls, nil }

	v, err := GetOrLoad(c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(40 * time.Millisecond)
	v, err = GetOrLoad(c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "просроченное значение загружается заново")
}

func TestGetOrLoad_ErrorsNotCached(t *testing.T) {
	c := New(time.Minute)
	_, err := GetOrLoad(c, "k", func() (int, error) { return 0, errors.New("db down") })
	require.Error(t, err)

	v, err := GetOrLoad(c, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := GetOrLoad(c, "k", func() (int, error) { calls++; return 1, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
