package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanwoo-dev/melogate/internal/registry"
)

func TestSnapshotReflectsInitialState(t *testing.T) {
	t.Parallel()

	reg := registry.New("EN", []string{"EN-US", "EN-BR", "EN-AU"})

	snap := reg.Snapshot()
	assert.Equal(t, "EN", snap.Language)
	assert.Equal(t, []string{"EN-AU", "EN-BR", "EN-US"}, snap.Speakers)
}

func TestSnapshotHas(t *testing.T) {
	t.Parallel()

	reg := registry.New("KR", []string{"KR"})

	snap := reg.Snapshot()
	assert.True(t, snap.Has("KR"))
	assert.False(t, snap.Has("EN-US"))
	assert.False(t, snap.Has(""))
}

func TestSwitchReplacesBothFields(t *testing.T) {
	t.Parallel()

	reg := registry.New("EN", []string{"EN-US"})
	reg.Switch("KR", []string{"KR"})

	snap := reg.Snapshot()
	assert.Equal(t, "KR", snap.Language)
	assert.Equal(t, []string{"KR"}, snap.Speakers)
	assert.False(t, snap.Has("EN-US"))
}

func TestSnapshotIsolatedFromLaterSwitches(t *testing.T) {
	t.Parallel()

	reg := registry.New("EN", []string{"EN-US"})
	before := reg.Snapshot()

	reg.Switch("KR", []string{"KR"})

	// The earlier snapshot still validates against the old language
	assert.Equal(t, "EN", before.Language)
	assert.True(t, before.Has("EN-US"))
}

// TestSwitchIsAtomic hammers the registry with switches between two
// language/speaker pairs while readers verify they never observe a language
// paired with the other language's speakers.
func TestSwitchIsAtomic(t *testing.T) {
	t.Parallel()

	reg := registry.New("EN", []string{"EN-speaker"})

	const iterations = 2000
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if i%2 == 0 {
				reg.Switch("KR", []string{"KR-speaker"})
			} else {
				reg.Switch("EN", []string{"EN-speaker"})
			}
		}
	}()

	var torn bool
	for i := 0; i < iterations; i++ {
		snap := reg.Snapshot()
		require.Len(t, snap.Speakers, 1)
		if snap.Speakers[0] != fmt.Sprintf("%s-speaker", snap.Language) {
			torn = true
			break
		}
	}
	wg.Wait()

	assert.False(t, torn, "observed a language paired with another language's speakers")
}
