package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equityrocket/engine/library"
	"equityrocket/state/settlement"
	"equityrocket/state/vesting"
)

const ref = "ledger"

func newTestLedger(t *testing.T) (*Ledger, *settlement.Token) {
	t.Helper()
	token := settlement.NewToken("USDT", 6, "issuer")
	company := Company{Ref: ref, Name: "Acme", Symbol: "ACME", Founder: "founder"}
	return New(company, 2, token), token
}

// allocate gives each account a founding allocation that is fully vested and claimed.
func allocate(t *testing.T, l *Ledger, tokens library.Amount, accounts ...library.Account) {
	t.Helper()
	for _, account := range accounts {
		require.NoError(t, l.FoundingAllocation("founder", account, tokens, 0, 0, 0))
		_, err := l.ClaimEquity(account, 0)
		require.NoError(t, err)
	}
}

func assertSupplyConserved(t *testing.T, l *Ledger) {
	t.Helper()
	s := l.Snapshot()
	assert.Equal(t, s.Table.TotalSupply, s.Table.SumOfBalances()+s.Offers.TotalEscrowed())
}

func TestVestingClaim(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.FoundingAllocation("founder", "alice", 1000, 0, 1000, 0))

	assert.Equal(t, library.Amount(1000), l.BalanceOf("alice"))
	assert.Equal(t, library.Amount(0), l.FreeBalanceOf("alice"))
	assert.Equal(t, library.Amount(500), l.Unlockable("alice", 500))

	claimed, err := l.ClaimEquity("alice", 500)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(500), claimed)
	assert.Equal(t, library.Amount(500), l.FreeBalanceOf("alice"))
	assert.Equal(t, library.Amount(1000), l.BalanceOf("alice"))

	_, err = l.ClaimEquity("alice", 500)
	assert.ErrorIs(t, err, library.ErrNothingToClaim)
	// older timestamps are clamped to the ledger clock
	_, err = l.ClaimEquity("alice", 400)
	assert.ErrorIs(t, err, library.ErrNothingToClaim)
	assert.Equal(t, library.Timestamp(500), l.Clock())

	err = l.Transfer("alice", "bob", 501, 600)
	assert.ErrorIs(t, err, library.ErrInsufficientBalance)
	require.NoError(t, l.Transfer("alice", "bob", 500, 600))
	assert.Equal(t, library.Amount(500), l.BalanceOf("bob"))

	claimed, err = l.ClaimEquity("alice", 2000)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(500), claimed)
	assert.Equal(t, library.Amount(500), l.FreeBalanceOf("alice"))

	_, err = l.ClaimEquity("bob", 2000)
	assert.ErrorIs(t, err, library.ErrNotAPartner)
	assertSupplyConserved(t, l)
}

func TestFoundingAllocationClosesWithFirstProposal(t *testing.T) {
	l, _ := newTestLedger(t)
	err := l.FoundingAllocation("alice", "alice", 10, 0, 0, 0)
	assert.ErrorIs(t, err, library.ErrNotAPartner)

	require.NoError(t, l.FoundingAllocation("founder", "alice", 10, 0, 0, 0))
	err = l.FoundingAllocation("founder", "alice", 10, 0, 0, 0)
	assert.ErrorIs(t, err, library.ErrTargetAlreadyPartner)
	assert.True(t, l.FoundingOpen())

	_, err = l.CreateAddProposal("alice", "bob", 10, 0, 0, 1)
	require.NoError(t, err)
	assert.False(t, l.FoundingOpen())
	err = l.FoundingAllocation("founder", "carol", 10, 0, 0, 1)
	assert.ErrorIs(t, err, library.ErrNotAPartner)
}

func TestAddProposalNeedsStrictMajority(t *testing.T) {
	l, _ := newTestLedger(t)
	allocate(t, l, 100, "a", "b", "c", "d")
	assert.Equal(t, []library.Account{"a", "b", "c", "d"}, l.GetPartners())

	_, err := l.CreateAddProposal("x", "e", 100, 0, 100, 10)
	assert.ErrorIs(t, err, library.ErrNotAPartner)
	_, err = l.CreateAddProposal("a", "b", 100, 0, 100, 10)
	assert.ErrorIs(t, err, library.ErrTargetAlreadyPartner)

	id, err := l.CreateAddProposal("a", "e", 100, 0, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.Equal(t, int64(1), l.NextProposalID())
	assert.Equal(t, library.Account("e"), l.AddProposals(id).Target)
	assert.Equal(t, library.Account(""), l.DismissProposals(id).Target)

	for _, voter := range []library.Account{"a", "b"} {
		result, err := l.VoteAddProposal(voter, id, 20)
		require.NoError(t, err)
		assert.False(t, result.Executed)
	}
	_, err = l.VoteAddProposal("a", id, 20)
	assert.ErrorIs(t, err, library.ErrAlreadyVoted)
	_, err = l.VoteAddProposal("x", id, 20)
	assert.ErrorIs(t, err, library.ErrNotAPartner)
	_, err = l.VoteDismissProposal("c", id, 20)
	assert.ErrorIs(t, err, library.ErrWrongProposalKind)
	_, err = l.VoteAddProposal("c", 7, 20)
	assert.ErrorIs(t, err, library.ErrNotFound)
	assert.False(t, l.Snapshot().Table.IsPartner("e"))

	result, err := l.VoteAddProposal("c", id, 30)
	require.NoError(t, err)
	assert.True(t, result.Executed)
	assert.Equal(t, 3, result.Proposal.Votes())

	partner, ok := l.Partner("e")
	require.True(t, ok)
	assert.Equal(t, library.Timestamp(30), partner.Vesting.CliffTimestamp)
	assert.Equal(t, library.Amount(100), l.BalanceOf("e"))
	assert.Equal(t, library.Amount(500), l.TotalSupply())
	assert.Empty(t, l.OpenProposals())

	_, err = l.VoteAddProposal("d", id, 40)
	assert.ErrorIs(t, err, library.ErrAlreadyExecuted)
	assertSupplyConserved(t, l)
}

func TestFailedExecutionDiscardsVote(t *testing.T) {
	l, _ := newTestLedger(t)
	allocate(t, l, 100, "a", "b")

	first, err := l.CreateAddProposal("a", "e", 10, 0, 0, 1)
	require.NoError(t, err)
	second, err := l.CreateAddProposal("a", "e", 20, 0, 0, 1)
	require.NoError(t, err)

	_, err = l.VoteAddProposal("a", first, 2)
	require.NoError(t, err)
	result, err := l.VoteAddProposal("b", first, 2)
	require.NoError(t, err)
	require.True(t, result.Executed)

	_, err = l.VoteAddProposal("a", second, 3)
	require.NoError(t, err)
	_, err = l.VoteAddProposal("b", second, 3)
	assert.ErrorIs(t, err, library.ErrTargetAlreadyPartner)

	p, err := l.Proposal(second)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Votes())
	assert.False(t, p.Executed)
	assert.Equal(t, library.Amount(10), l.BalanceOf("e"))
}

func TestDismissal(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.FoundingAllocation("founder", "a", 1000, 0, 1000, 0))
	allocate(t, l, 1000, "b", "c")

	claimed, err := l.ClaimEquity("a", 100)
	require.NoError(t, err)
	require.Equal(t, library.Amount(100), claimed)

	_, err = l.CreateDismissProposal("b", "x", 300)
	assert.ErrorIs(t, err, library.ErrTargetNotFound)
	id, err := l.CreateDismissProposal("b", "a", 300)
	require.NoError(t, err)
	assert.Equal(t, library.Account("a"), l.DismissProposals(id).Target)

	_, err = l.VoteAddProposal("b", id, 300)
	assert.ErrorIs(t, err, library.ErrWrongProposalKind)
	_, err = l.VoteDismissProposal("b", id, 300)
	require.NoError(t, err)
	result, err := l.VoteDismissProposal("c", id, 300)
	require.NoError(t, err)
	assert.True(t, result.Executed)

	assert.False(t, l.Snapshot().Table.IsPartner("a"))
	assert.Equal(t, library.Amount(300), l.BalanceOf("a"))
	assert.Equal(t, library.Amount(300), l.FreeBalanceOf("a"))
	assert.Equal(t, library.Amount(2300), l.TotalSupply())
	assert.Equal(t, []library.Account{"b", "c"}, l.GetPartners())
	assertSupplyConserved(t, l)

	// a balance does not make a partner
	_, err = l.CreateAddProposal("a", "d", 50, 0, 0, 400)
	assert.ErrorIs(t, err, library.ErrNotAPartner)

	// a dismissed partner can be proposed again
	_, err = l.CreateAddProposal("b", "a", 50, 0, 0, 400)
	assert.NoError(t, err)
}

func TestMarketplace(t *testing.T) {
	l, token := newTestLedger(t)
	allocate(t, l, 1000, "alice")

	_, err := l.SellEquity("alice", 1001, 50, 1)
	assert.ErrorIs(t, err, library.ErrInsufficientBalance)
	offer, err := l.SellEquity("alice", 400, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(400), offer.TokensEscrowed)
	_, err = l.SellEquity("alice", 100, 50, 1)
	assert.ErrorIs(t, err, library.ErrOfferAlreadyOpen)
	assert.Equal(t, library.Amount(600), l.BalanceOf("alice"))
	assertSupplyConserved(t, l)

	_, err = l.BuyEquity("bob", "alice", 2)
	assert.ErrorIs(t, err, settlement.ErrInsufficientAllowance)
	assert.Equal(t, []OfferDetails{{Seller: "alice", TokensEscrowed: 400, Price: 50}}, l.GetAllSellEquityDetails())
	assert.Equal(t, library.Amount(0), l.BalanceOf("bob"))

	require.NoError(t, token.Issue("issuer", "bob", 50))
	token.Approve("bob", ref, 50)
	_, err = l.BuyEquity("bob", "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(400), l.BalanceOf("bob"))
	assert.Equal(t, library.Amount(400), l.FreeBalanceOf("bob"))
	assert.Equal(t, library.Amount(50), token.BalanceOf("alice"))
	assert.Equal(t, library.Amount(0), token.BalanceOf("bob"))
	assert.Empty(t, l.GetAllSellEquityDetails())

	_, err = l.BuyEquity("bob", "alice", 4)
	assert.ErrorIs(t, err, library.ErrNoOpenOffer)

	_, err = l.SellEquity("alice", 100, 10, 5)
	require.NoError(t, err)
	_, err = l.CancelSellOffer("alice", 6)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(600), l.BalanceOf("alice"))
	_, err = l.CancelSellOffer("alice", 6)
	assert.ErrorIs(t, err, library.ErrNoOpenOffer)
	assertSupplyConserved(t, l)
}

func TestLockedTokensCannotBeSold(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.FoundingAllocation("founder", "alice", 1000, 100, 100, 0))
	_, err := l.SellEquity("alice", 1, 1, 50)
	assert.ErrorIs(t, err, library.ErrInsufficientBalance)
	err = l.Transfer("alice", "bob", 1, 50)
	assert.ErrorIs(t, err, library.ErrInsufficientBalance)
}

func TestYield(t *testing.T) {
	l, token := newTestLedger(t)
	allocate(t, l, 600, "alice")
	allocate(t, l, 400, "bob")

	require.NoError(t, token.Issue("issuer", "customer", 1500))
	err := l.DepositRevenue("customer", 1000, 1)
	assert.ErrorIs(t, err, settlement.ErrInsufficientAllowance)
	assert.Equal(t, library.Amount(0), l.UndistributedPool())

	token.Approve("customer", ref, 1500)
	require.NoError(t, l.DepositRevenue("customer", 1000, 1))
	assert.Equal(t, library.Amount(1000), l.UndistributedPool())
	assert.Equal(t, library.Amount(1000), token.BalanceOf(ref))
	assert.Equal(t, library.Amount(600), l.Withdrawable("alice"))
	assert.Equal(t, library.Amount(400), l.Withdrawable("bob"))

	paid, err := l.WithdrawUSDT("alice", 2)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(600), paid)
	assert.Equal(t, library.Amount(600), token.BalanceOf("alice"))
	_, err = l.WithdrawUSDT("alice", 2)
	assert.ErrorIs(t, err, library.ErrNothingToClaim)

	// a holder only earns on deposits made while holding
	require.NoError(t, l.Transfer("alice", "carol", 600, 3))
	require.NoError(t, l.DepositRevenue("customer", 500, 4))
	assert.Equal(t, library.Amount(0), l.Withdrawable("alice"))
	assert.Equal(t, library.Amount(300), l.Withdrawable("carol"))
	assert.Equal(t, library.Amount(600), l.Withdrawable("bob"))

	// escrowed tokens keep earning for the seller
	_, err = l.SellEquity("bob", 400, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(600), l.Withdrawable("bob"))

	_, err = l.WithdrawUSDT("dave", 6)
	assert.ErrorIs(t, err, library.ErrNothingToClaim)
	_, err = l.WithdrawUSDT("bob", 6)
	require.NoError(t, err)
	_, err = l.WithdrawUSDT("carol", 6)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(0), l.UndistributedPool())
	assert.Equal(t, library.Amount(0), token.BalanceOf(ref))
}

func TestDepositBeforeAnySupplyIsHeld(t *testing.T) {
	l, token := newTestLedger(t)
	require.NoError(t, token.Issue("issuer", "customer", 100))
	token.Approve("customer", ref, 100)
	require.NoError(t, l.DepositRevenue("customer", 100, 0))

	allocate(t, l, 10, "alice")
	assert.Equal(t, library.Amount(100), l.Withdrawable("alice"))
}

func TestSnapshotRestore(t *testing.T) {
	l, token := newTestLedger(t)
	require.NoError(t, l.FoundingAllocation("founder", "alice", 1000, 0, 1000, 0))
	allocate(t, l, 500, "bob")
	_, err := l.SellEquity("bob", 100, 5, 10)
	require.NoError(t, err)
	_, err = l.CreateDismissProposal("bob", "alice", 10)
	require.NoError(t, err)

	data, err := json.Marshal(l.Snapshot())
	require.NoError(t, err)
	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	restored := Restore(snapshot, token)

	assert.Equal(t, l.Company(), restored.Company())
	assert.Equal(t, l.GetPartners(), restored.GetPartners())
	assert.Equal(t, l.TotalSupply(), restored.TotalSupply())
	assert.Equal(t, l.GetAllSellEquityDetails(), restored.GetAllSellEquityDetails())
	assert.Equal(t, l.NextProposalID(), restored.NextProposalID())
	assert.Equal(t, l.Unlockable("alice", 500), restored.Unlockable("alice", 500))

	err = restored.FoundingAllocation("founder", "carol", 1, 0, 0, 20)
	assert.ErrorIs(t, err, library.ErrNotAPartner)
	require.NoError(t, restored.Transfer("bob", "carol", 100, 20))
	assert.Equal(t, library.Amount(100), restored.BalanceOf("carol"))
	assert.Equal(t, library.Amount(0), l.BalanceOf("carol"))
}

func TestConcurrentTransfers(t *testing.T) {
	l, _ := newTestLedger(t)
	allocate(t, l, 1000, "alice", "bob")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = l.Transfer("alice", "bob", 1, library.Timestamp(i))
		}(i)
		go func() {
			defer wg.Done()
			table := l.Snapshot().Table
			assert.Equal(t, library.Amount(2000), table.BalanceOf("alice")+table.BalanceOf("bob"))
		}()
	}
	wg.Wait()
	assert.Equal(t, library.Amount(950), l.BalanceOf("alice"))
	assertSupplyConserved(t, l)
}

func TestHandleEvent(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, bob := strings.Repeat("a", 64), strings.Repeat("b", 64)
	event := nostr.Event{
		PubKey:    "founder",
		Kind:      KindFoundingAllocation,
		CreatedAt: nostr.Timestamp(5),
		Content:   fmt.Sprintf(`{"partner":%q,"tokens":100,"cliff_seconds":0,"vesting_seconds":0}`, alice),
	}
	snapshot, err := l.HandleEvent(event)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(100), snapshot.Table.TotalSupply)
	assert.Equal(t, library.Timestamp(5), snapshot.Clock)

	_, err = l.HandleEvent(nostr.Event{PubKey: alice, Kind: KindClaimEquity, CreatedAt: 6})
	require.NoError(t, err)

	event = nostr.Event{PubKey: alice, Kind: KindTransfer, CreatedAt: 7, Content: fmt.Sprintf(`{"to":%q,"amount":%d}`, bob, 40)}
	_, err = l.HandleEvent(event)
	require.NoError(t, err)
	assert.Equal(t, library.Amount(40), l.BalanceOf(bob))

	_, err = l.HandleEvent(nostr.Event{PubKey: alice, Kind: KindTransfer, Content: "{"})
	assert.Error(t, err)
	_, err = l.HandleEvent(nostr.Event{PubKey: alice, Kind: 1})
	assert.Error(t, err)
	assert.True(t, Handles(KindWithdrawUSDT))
	assert.False(t, Handles(640800))
	assert.False(t, Handles(640803))
}

func TestMalformedRecipientsRejected(t *testing.T) {
	l, _ := newTestLedger(t)
	alice := strings.Repeat("a", 64)
	allocate(t, l, 100, alice)
	_, err := l.ClaimEquity(alice, 1)
	require.NoError(t, err)

	for _, to := range []string{"", "bob", strings.Repeat("z", 64), strings.Repeat("a", 63)} {
		content := fmt.Sprintf(`{"to":%q,"amount":10}`, to)
		_, err = l.HandleEvent(nostr.Event{PubKey: alice, Kind: KindTransfer, CreatedAt: 2, Content: content})
		assert.ErrorIs(t, err, library.ErrTargetNotFound, "to %q", to)

		content = fmt.Sprintf(`{"target":%q,"tokens":10,"cliff_seconds":0,"vesting_seconds":0}`, to)
		_, err = l.HandleEvent(nostr.Event{PubKey: alice, Kind: KindCreateAddProposal, CreatedAt: 2, Content: content})
		assert.ErrorIs(t, err, library.ErrTargetNotFound, "target %q", to)
	}
	assert.ErrorIs(t, l.Transfer(alice, "", 10, 2), library.ErrTargetNotFound)
	assert.Equal(t, library.Amount(100), l.BalanceOf(alice))
	assert.Equal(t, int64(0), l.NextProposalID())
}

func TestUnexecutableVestingWindowRejected(t *testing.T) {
	l, _ := newTestLedger(t)
	allocate(t, l, 100, "alice")

	_, err := l.CreateAddProposal("alice", "erin", 10, -1, 0, 1)
	assert.ErrorIs(t, err, vesting.ErrNegativeWindow)
	_, err = l.CreateAddProposal("alice", "erin", 10, 0, -1, 1)
	assert.ErrorIs(t, err, vesting.ErrNegativeWindow)
	_, err = l.CreateAddProposal("alice", "erin", 10, math.MaxInt64, 0, 1)
	assert.ErrorIs(t, err, library.ErrOverflow)
	_, err = l.CreateAddProposal("alice", "erin", 10, 0, math.MaxInt64, 1)
	assert.ErrorIs(t, err, library.ErrOverflow)

	assert.Equal(t, int64(0), l.NextProposalID())
	assert.Empty(t, l.OpenProposals())
	assert.True(t, l.FoundingOpen())

	err = l.FoundingAllocation("founder", "bob", 10, -5, 0, 1)
	assert.ErrorIs(t, err, vesting.ErrNegativeWindow)
	err = l.FoundingAllocation("founder", "bob", 10, 0, math.MaxInt64, 1)
	assert.ErrorIs(t, err, library.ErrOverflow)
	assert.Equal(t, library.Amount(100), l.TotalSupply())
	_, ok := l.Partner("bob")
	assert.False(t, ok)

	id, err := l.CreateAddProposal("alice", "erin", 10, 0, 10, 1)
	require.NoError(t, err)
	result, err := l.VoteAddProposal("alice", id, 2)
	require.NoError(t, err)
	assert.True(t, result.Executed)
}
