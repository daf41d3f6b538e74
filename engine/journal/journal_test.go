package journal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	return j, path
}

func TestAppendAndReplay(t *testing.T) {
	j, path := open(t)
	for i, id := range []string{"a", "b", "c"} {
		seq, err := j.Append(nostr.Event{ID: id, Kind: 640800 + 2*i, Content: id})
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}
	_, err := j.Append(nostr.Event{ID: "b"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, j.Contains("c"))
	assert.False(t, j.Contains("d"))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	n, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var ids []string
	require.NoError(t, j.Replay(func(seq uint64, e nostr.Event) error {
		ids = append(ids, e.ID)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestReplayCollectsFailures(t *testing.T) {
	j, _ := open(t)
	defer j.Close()
	for _, id := range []string{"a", "b", "c"} {
		_, err := j.Append(nostr.Event{ID: id})
		require.NoError(t, err)
	}
	boom := errors.New("boom")
	var seen int
	err := j.Replay(func(seq uint64, e nostr.Event) error {
		seen++
		if e.ID != "b" {
			return boom
		}
		return nil
	})
	assert.Equal(t, 3, seen)
	assert.ErrorIs(t, err, boom)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
}
