package actors

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip06"
	"github.com/sasha-s/go-deadlock"
	"equityrocket/engine/library"
)

var currentWallet library.Wallet
var currentWalletMutex = &deadlock.Mutex{}

// MyWallet returns the current Wallet or creates a new one if there isn't one already
func MyWallet() library.Wallet {
	currentWalletMutex.Lock()
	defer currentWalletMutex.Unlock()
	if len(currentWallet.PrivateKey) == 0 {
		if w, ok := getWalletFromDisk(); ok {
			currentWallet = w
		} else {
			library.LogCLI("Generating a new wallet, write down the seed words if you want to keep it", 4)
			w, err := WalletFromSeedWords("")
			if err != nil {
				library.LogCLI(err.Error(), 0)
			}
			currentWallet = w
			fmt.Printf("\n\n~NEW WALLET~\nPublic Key: %s\nPrivate Key: %s\nSeed Words: %s\n\n", currentWallet.Account, currentWallet.PrivateKey, currentWallet.SeedWords)
			if err := persistCurrentWallet(); err != nil {
				library.LogCLI(err.Error(), 1)
			}
		}
	}
	return currentWallet
}

// WalletFromSeedWords derives a wallet from BIP39 seed words, generating new words if
// seedWords is empty.
func WalletFromSeedWords(seedWords string) (library.Wallet, error) {
	if len(seedWords) == 0 {
		words, err := nip06.GenerateSeedWords()
		if err != nil {
			return library.Wallet{}, err
		}
		seedWords = words
	}
	if !nip06.ValidateWords(seedWords) {
		return library.Wallet{}, fmt.Errorf("invalid seed words")
	}
	sk, err := nip06.PrivateKeyFromSeed(nip06.SeedFromWords(seedWords))
	if err != nil {
		return library.Wallet{}, err
	}
	account, err := getPubKey(sk)
	if err != nil {
		return library.Wallet{}, err
	}
	return library.Wallet{
		PrivateKey: sk,
		SeedWords:  seedWords,
		Account:    account,
	}, nil
}

func getPubKey(privateKey string) (library.Account, error) {
	keyb, err := hex.DecodeString(privateKey)
	if err != nil {
		return "", fmt.Errorf("error decoding key from hex: %w", err)
	}
	_, pubkey := btcec.PrivKeyFromBytes(keyb)
	return hex.EncodeToString(schnorr.SerializePubKey(pubkey)), nil
}

// NewTransaction builds a transaction for the engine, signed by wallet. The company tag is
// only added when company is not empty.
func NewTransaction(wallet library.Wallet, kind int, company library.LedgerRef, content any) (nostr.Event, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nostr.Event{}, err
	}
	e := nostr.Event{
		PubKey:    wallet.Account,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      kind,
		Tags:      nostr.Tags{},
		Content:   string(body),
	}
	if len(company) > 0 {
		e.Tags = append(e.Tags, nostr.Tag{"company", company})
	}
	e.ID = e.GetID()
	if err := e.Sign(wallet.PrivateKey); err != nil {
		return nostr.Event{}, err
	}
	return e, nil
}

func persistCurrentWallet() error {
	bytes, err := json.Marshal(currentWallet)
	if err != nil {
		return err
	}
	return os.WriteFile(MakeOrGetConfig().GetString("rootDir")+"wallet.dat", bytes, 0600)
}

func getWalletFromDisk() (w library.Wallet, ok bool) {
	file, err := os.ReadFile(MakeOrGetConfig().GetString("rootDir") + "wallet.dat")
	if err != nil {
		library.LogCLI(fmt.Sprintf("Error getting wallet file: %s", err.Error()), 2)
		return library.Wallet{}, false
	}
	err = json.Unmarshal(file, &w)
	if err != nil {
		library.LogCLI(fmt.Sprintf("Error parsing wallet file: %s", err.Error()), 3)
		return library.Wallet{}, false
	}
	return w, true
}
