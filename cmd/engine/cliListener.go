package main

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/eiannone/keyboard"

	"equityrocket/engine/actors"
	"equityrocket/engine/library"
	"equityrocket/messaging/eventconductor"
)

// cliListener is a cheap and nasty way to speed up development cycles. It listens for keypresses and executes commands.
func cliListener(c *eventconductor.Conductor, interrupt chan struct{}) {
	fmt.Println("VIEW CURRENT STATE:\ns: cap tables\nu: settlement balances\nw: current wallet\nc: engine config\nd: dump everything\nD: write the flat file dump\nq: to quit\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			library.LogCLI(err.Error(), 2)
			return
		}
		str := string(r)
		switch str {
		default:
			if k == keyboard.KeyEnter {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any test procedures. See main.cliListener for more details.")
		case "s":
			now := library.Timestamp(time.Now().Unix())
			for _, l := range c.Registry().Ledgers() {
				printLedger(os.Stdout, l, now)
			}
		case "u":
			token := c.Settlement()
			for _, account := range token.Holders() {
				fmt.Printf("%s: %s %s\n", account, library.FormatAmount(token.BalanceOf(account), token.Decimals()), token.Symbol())
			}
		case "q":
			close(interrupt)
			return
		case "w":
			fmt.Printf("Current Wallet: \n%s\n", actors.MyWallet().Account)
		case "c":
			fmt.Println("CURRENT CONFIG")
			for k, v := range actors.MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", k, v)
			}
		case "d":
			spew.Dump(c.CurrentState())
		case "D":
			if err := c.Dump(); err != nil {
				library.LogCLI(err.Error(), 1)
			}
		}
	}
}
