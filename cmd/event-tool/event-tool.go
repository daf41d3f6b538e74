// event-tool builds and signs transactions for the engine and prints them as JSON lines, ready
// to be appended to a file passed to `engine start --events`.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"equityrocket/engine/actors"
	"equityrocket/engine/library"
	"equityrocket/state/ledger"
	"equityrocket/state/registry"
	"equityrocket/state/settlement"
)

var (
	rootDir   string
	seedWords string
	company   string

	name, symbol, account string
	tokens, amount, price uint64
	cliff, vesting        int64
	proposalID            int64
)

var rootCmd = &cobra.Command{
	Use:   "event-tool",
	Short: "Builds signed transactions",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		conf := viper.New()
		if len(rootDir) > 0 {
			conf.Set("rootDir", strings.TrimSuffix(rootDir, "/")+"/")
		}
		actors.InitConfig(conf)
		actors.SetConfig(conf)
	},
}

func wallet() (library.Wallet, error) {
	if len(seedWords) > 0 {
		return actors.WalletFromSeedWords(seedWords)
	}
	return actors.MyWallet(), nil
}

// transaction returns a command that signs the content built by content as a kind transaction.
func transaction(use, short string, kind int, needsCompany bool, content func() any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if needsCompany && len(company) != 64 {
				return fmt.Errorf("--company must be the 64 character ledger reference")
			}
			ref := company
			if !needsCompany {
				ref = ""
			}
			w, err := wallet()
			if err != nil {
				return err
			}
			e, err := actors.NewTransaction(w, kind, ref, content())
			if err != nil {
				return err
			}
			b, err := json.Marshal(e)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
}

func empty() any { return struct{}{} }

func commands() []*cobra.Command {
	found := transaction("found", "Found a company, the signer becomes the founder", registry.KindFoundCompany, false, func() any {
		return registry.Kind640800{Name: name, Symbol: symbol}
	})
	found.Flags().StringVar(&name, "name", "", "company name")
	found.Flags().StringVar(&symbol, "symbol", "", "ticker symbol")

	allocate := transaction("allocate", "Founding allocation to a partner", ledger.KindFoundingAllocation, true, func() any {
		return ledger.Kind640802{Partner: account, Tokens: tokens, CliffSeconds: cliff, VestingSeconds: vesting}
	})
	proposeAdd := transaction("propose-add", "Propose a new partner", ledger.KindCreateAddProposal, true, func() any {
		return ledger.Kind640804{Target: account, Tokens: tokens, CliffSeconds: cliff, VestingSeconds: vesting}
	})
	for _, cmd := range []*cobra.Command{allocate, proposeAdd} {
		cmd.Flags().StringVar(&account, "partner", "", "pubkey of the partner")
		cmd.Flags().Uint64Var(&tokens, "tokens", 0, "tokens in base units")
		cmd.Flags().Int64Var(&cliff, "cliff", 0, "cliff in seconds")
		cmd.Flags().Int64Var(&vesting, "vesting", 0, "vesting duration in seconds after the cliff")
	}

	proposeDismiss := transaction("propose-dismiss", "Propose the dismissal of a partner", ledger.KindCreateDismissProposal, true, func() any {
		return ledger.Kind640806{Target: account}
	})
	proposeDismiss.Flags().StringVar(&account, "partner", "", "pubkey of the partner")

	voteAdd := transaction("vote-add", "Vote for an add proposal", ledger.KindVoteAdd, true, func() any {
		return ledger.Kind640808{ProposalID: proposalID}
	})
	voteDismiss := transaction("vote-dismiss", "Vote for a dismiss proposal", ledger.KindVoteDismiss, true, func() any {
		return ledger.Kind640808{ProposalID: proposalID}
	})
	for _, cmd := range []*cobra.Command{voteAdd, voteDismiss} {
		cmd.Flags().Int64Var(&proposalID, "id", 0, "proposal id")
	}

	sell := transaction("sell", "Offer tokens for sale", ledger.KindSellEquity, true, func() any {
		return ledger.Kind640814{Tokens: tokens, Price: price}
	})
	sell.Flags().Uint64Var(&tokens, "tokens", 0, "tokens in base units")
	sell.Flags().Uint64Var(&price, "price", 0, "price of the whole lot in settlement base units")

	buy := transaction("buy", "Buy the open offer of a seller", ledger.KindBuyEquity, true, func() any {
		return ledger.Kind640816{Seller: account}
	})
	buy.Flags().StringVar(&account, "seller", "", "pubkey of the seller")

	deposit := transaction("deposit", "Deposit revenue for the token holders", ledger.KindDepositRevenue, true, func() any {
		return ledger.Kind640820{Amount: amount}
	})
	deposit.Flags().Uint64Var(&amount, "amount", 0, "settlement base units")

	transfer := transaction("transfer", "Transfer free tokens", ledger.KindTransfer, true, func() any {
		return ledger.Kind640824{To: account, Amount: amount}
	})
	approve := transaction("approve", "Allow a spender to move settlement funds", settlement.KindApprove, false, func() any {
		return settlement.Kind640900{Spender: account, Amount: amount}
	})
	pay := transaction("pay", "Transfer settlement funds", settlement.KindTransfer, false, func() any {
		return settlement.Kind640902{To: account, Amount: amount}
	})
	issue := transaction("issue", "Issue settlement funds (issuer only)", settlement.KindIssue, false, func() any {
		return settlement.Kind640902{To: account, Amount: amount}
	})
	for _, cmd := range []*cobra.Command{transfer, approve, pay, issue} {
		cmd.Flags().StringVar(&account, "to", "", "pubkey (or ledger reference) of the counterparty")
		cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")
	}

	return []*cobra.Command{
		found, allocate, proposeAdd, proposeDismiss, voteAdd, voteDismiss,
		transaction("claim", "Claim vested equity", ledger.KindClaimEquity, true, empty),
		sell, buy,
		transaction("cancel", "Cancel your open offer", ledger.KindCancelSellOffer, true, empty),
		deposit,
		transaction("withdraw", "Withdraw your share of deposited revenue", ledger.KindWithdrawUSDT, true, empty),
		transfer, approve, pay, issue,
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "working directory holding the wallet, defaults to ~/equityrocket/")
	rootCmd.PersistentFlags().StringVar(&seedWords, "seed", "", "sign with the wallet derived from these seed words instead of the local wallet")
	rootCmd.PersistentFlags().StringVar(&company, "company", "", "ledger reference of the company")
	rootCmd.AddCommand(commands()...)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
