package idgen_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/idgen"
)

func TestSequential(t *testing.T) {
	g := idgen.NewSequential("win")
	assert.Equal(t, "win_1", g.Generate())
	assert.Equal(t, "win_2", g.Generate())

	bare := idgen.NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}

func TestSequentialConcurrentUnique(t *testing.T) {
	g := idgen.NewSequential("w")
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestUUID(t *testing.T) {
	id := idgen.NewUUID("enc").Generate()
	require.True(t, strings.HasPrefix(id, "enc_"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "enc_"))
	assert.NoError(t, err)
}
