package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"equityrocket/engine/library"
	"equityrocket/messaging/eventconductor"
	"equityrocket/state/ledger"
	"equityrocket/state/registry"
	"equityrocket/state/settlement"
)

var fromDump bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the cap table of every company",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ledgers []*ledger.Ledger
		if fromDump {
			s, err := eventconductor.LoadDump()
			if err != nil {
				return err
			}
			reg := registry.New(0, settlement.NewToken(s.Settlement.Symbol, s.Settlement.Decimals, ""))
			if err := reg.Restore(s.Companies); err != nil {
				return err
			}
			ledgers = reg.Ledgers()
		} else {
			c, j, err := buildConductor()
			if err != nil {
				return err
			}
			defer j.Close()
			if err := c.Replay(); err != nil {
				library.LogCLI(err.Error(), 2)
			}
			ledgers = c.Registry().Ledgers()
		}
		now := library.Timestamp(time.Now().Unix())
		for _, l := range ledgers {
			printLedger(os.Stdout, l, now)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&fromDump, "dump", false, "read the flat file dump instead of replaying the journal")
	rootCmd.AddCommand(showCmd)
}

func printLedger(w io.Writer, l *ledger.Ledger, now library.Timestamp) {
	c := l.Company()
	decimals := l.Decimals()
	fmt.Fprintf(w, "\n--------- %d %s (%s) -----------\n", c.ID, c.Name, c.Symbol)
	fmt.Fprintf(w, "Ledger: %s\nFounder: %s\nTotal Supply: %s\nNext Proposal: %d\nUndistributed Pool: %d\n",
		c.Ref, c.Founder, library.FormatAmount(l.TotalSupply(), decimals), l.NextProposalID(), l.UndistributedPool())
	for _, account := range l.GetPartners() {
		p, _ := l.Partner(account)
		fmt.Fprintf(w, "\nPartner: %s\nBalance: %s Free: %s\nAllocated: %s Unlockable: %s Claimed: %s\n",
			account,
			library.FormatAmount(l.BalanceOf(account), decimals),
			library.FormatAmount(l.FreeBalanceOf(account), decimals),
			library.FormatAmount(p.Vesting.AllocatedTokens, decimals),
			library.FormatAmount(l.Unlockable(account, now), decimals),
			library.FormatAmount(p.Vesting.ClaimedTokens, decimals),
		)
	}
	for _, offer := range l.GetAllSellEquityDetails() {
		fmt.Fprintf(w, "\nOffer by %s: %s for %d\n", offer.Seller, library.FormatAmount(offer.TokensEscrowed, decimals), offer.Price)
	}
	for _, p := range l.OpenProposals() {
		fmt.Fprintf(w, "\nOpen %s proposal %d for %s: %d votes\n", p.Kind(), p.ID, p.Target(), p.Votes())
	}
	fmt.Fprintf(w, "\n--------- End of data for: %s -----------\n\n", c.Symbol)
}
