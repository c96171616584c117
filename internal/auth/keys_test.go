package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigningKeySizeAndStability(t *testing.T) {
	provider := NewKeyProvider()

	key := provider.SigningKey()
	require.Len(t, key, hs512KeySize)

	again := provider.SigningKey()
	assert.Equal(t, key, again)
}

func TestSigningKeyConcurrentFirstCall(t *testing.T) {
	provider := NewKeyProvider()

	const callers = 32
	keys := make([][]byte, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i] = provider.SigningKey()
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Equal(t, keys[0], keys[i], "all callers must observe the same key")
	}
}

func TestDistinctProvidersGenerateDistinctKeys(t *testing.T) {
	a := NewKeyProvider().SigningKey()
	b := NewKeyProvider().SigningKey()
	assert.NotEqual(t, a, b)
}
