package governance

import (
	"testing"

	"equityrocket/engine/library"
	"github.com/stretchr/testify/require"
)

func TestQuorumIsStrictMajorityOfCount(t *testing.T) {
	require.False(t, QuorumReached(2, 4))
	require.True(t, QuorumReached(3, 4))
	require.False(t, QuorumReached(0, 0))
	require.True(t, QuorumReached(1, 1))
	require.False(t, QuorumReached(1, 2))
	require.True(t, QuorumReached(2, 3))
}

func TestIdsAreSequentialAcrossKinds(t *testing.T) {
	b := New()
	a := b.CreateAdd("alice", Add{Target: "bob", Tokens: 10}, 1)
	d := b.CreateDismiss("alice", Dismiss{Target: "carol"}, 2)
	require.Equal(t, int64(0), a.ID)
	require.Equal(t, int64(1), d.ID)
	require.Equal(t, int64(2), b.NextID())

	add, ok := b.AddProposal(0)
	require.True(t, ok)
	require.Equal(t, library.Account("bob"), add.Target)
	_, ok = b.AddProposal(1)
	require.False(t, ok)
	dismiss, ok := b.DismissProposal(1)
	require.True(t, ok)
	require.Equal(t, library.Account("carol"), dismiss.Target)
	_, ok = b.DismissProposal(7)
	require.False(t, ok)
}

func TestVoteErrors(t *testing.T) {
	b := New()
	b.CreateAdd("alice", Add{Target: "bob"}, 1)

	_, err := b.Vote(0, KindDismiss, "alice")
	require.ErrorIs(t, err, library.ErrWrongProposalKind)

	p, err := b.Vote(0, KindAdd, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, p.Votes())

	_, err = b.Vote(0, KindAdd, "alice")
	require.ErrorIs(t, err, library.ErrAlreadyVoted)

	_, err = b.Vote(3, KindAdd, "alice")
	require.ErrorIs(t, err, library.ErrNotFound)

	require.NoError(t, b.MarkExecuted(0, 5))
	_, err = b.Vote(0, KindAdd, "dave")
	require.ErrorIs(t, err, library.ErrAlreadyExecuted)
	require.ErrorIs(t, b.MarkExecuted(0, 6), library.ErrAlreadyExecuted)
	require.Empty(t, b.Open())
}

func TestCloneDoesNotShareVotes(t *testing.T) {
	b := New()
	b.CreateDismiss("alice", Dismiss{Target: "bob"}, 1)
	c := b.Clone()
	_, err := c.Vote(0, KindDismiss, "alice")
	require.NoError(t, err)

	orig, err := b.Get(0)
	require.NoError(t, err)
	require.Equal(t, 0, orig.Votes())
	require.Len(t, b.Open(), 1)
}
