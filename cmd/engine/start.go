package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"equityrocket/engine/actors"
	"equityrocket/engine/exporter"
	"equityrocket/engine/library"
)

var (
	eventsFile  string
	keyListener bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Replays the journal and handles new transactions",
	Long: `Replays the journal to rebuild every ledger, then handles the transactions in --events
(one signed JSON event per line) and keeps running until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := actors.MakeOrGetConfig()
		c, j, err := buildConductor()
		if err != nil {
			return err
		}
		defer j.Close()
		if err := c.Replay(); err != nil {
			library.LogCLI(err.Error(), 1)
		}
		library.LogCLI(fmt.Sprintf("replayed the journal, %d companies", len(c.Registry().Ledgers())), 4)

		terminate := make(chan struct{})
		actors.SetTerminateChan(terminate)
		go exporter.Serve(conf.GetString("metricsAddr"), terminate)
		c.Start()

		if len(eventsFile) > 0 {
			f, err := os.Open(eventsFile)
			if err != nil {
				return err
			}
			n, err := c.Ingest(f)
			f.Close()
			if err != nil {
				library.LogCLI(err.Error(), 1)
			}
			library.LogCLI(fmt.Sprintf("queued %d transactions from %s", n, eventsFile), 4)
		}

		interrupt := make(chan struct{})
		if keyListener {
			go cliListener(c, interrupt)
		}
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-stop:
			library.LogCLI(fmt.Sprintf("got signal '%v', stopping", s), 4)
		case <-interrupt:
		}
		close(terminate)
		actors.GetWaitGroup().Wait()
		if conf.GetBool("dumpOnShutdown") {
			if err := c.Dump(); err != nil {
				library.LogCLI(err.Error(), 1)
			}
		}
		return nil
	},
}

func init() {
	startCmd.Flags().StringVar(&eventsFile, "events", "", "file of signed transactions to handle, one JSON event per line")
	startCmd.Flags().BoolVar(&keyListener, "keys", true, "listen for single key commands on the terminal")
	rootCmd.AddCommand(startCmd)
}
