package actors

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equityrocket/engine/library"
)

const seedWords = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestWalletFromSeedWords(t *testing.T) {
	w, err := WalletFromSeedWords(seedWords)
	require.NoError(t, err)
	again, err := WalletFromSeedWords(seedWords)
	require.NoError(t, err)
	assert.Equal(t, w, again)

	pub, err := nostr.GetPublicKey(w.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, pub, w.Account)

	fresh, err := WalletFromSeedWords("")
	require.NoError(t, err)
	assert.NotEqual(t, w.Account, fresh.Account)

	_, err = WalletFromSeedWords("not a mnemonic")
	assert.Error(t, err)
}

func TestNewTransaction(t *testing.T) {
	w, err := WalletFromSeedWords(seedWords)
	require.NoError(t, err)
	ref := library.Sha256Sum("acme")

	e, err := NewTransaction(w, 640814, ref, map[string]uint64{"tokens": 5, "price": 10})
	require.NoError(t, err)
	ok, err := e.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, w.Account, e.PubKey)
	company, found := library.GetCompany(e)
	assert.True(t, found)
	assert.Equal(t, ref, company)
	assert.JSONEq(t, `{"tokens":5,"price":10}`, e.Content)

	e, err = NewTransaction(w, 640800, "", struct{}{})
	require.NoError(t, err)
	_, found = library.GetCompany(e)
	assert.False(t, found)
}
