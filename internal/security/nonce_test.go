package security

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nonceRE = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)

func TestGenerateNonce_Format(t *testing.T) {
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 24)
	assert.Regexp(t, nonceRE, nonce)
}

func TestGenerateNonce_Unique(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		nonce, err := GenerateNonce()
		require.NoError(t, err)
		require.Len(t, nonce, 24)
		_, dup := seen[nonce]
		require.Falsef(t, dup, "повтор nonce на итерации %d: %s", i, nonce)
		seen[nonce] = struct{}{}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerateNonce_PropagatesSourceFailure(t *testing.T) {
	prev := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = prev })

	nonce, err := GenerateNonce()
	require.Error(t, err)
	assert.Empty(t, nonce)
	assert.Contains(t, err.Error(), "entropy unavailable")
}
