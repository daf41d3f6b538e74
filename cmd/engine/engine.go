package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"equityrocket/engine/actors"
	"equityrocket/engine/journal"
	"equityrocket/messaging/eventconductor"
	"equityrocket/state/registry"
	"equityrocket/state/settlement"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Equity ledgers for many companies, driven by signed transactions",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Various aspect of this application require global and local settings. To keep things
		// clean and tidy we put these settings in a Viper configuration.
		conf := viper.New()
		if len(rootDir) > 0 {
			conf.Set("rootDir", strings.TrimSuffix(rootDir, "/")+"/")
		}
		actors.InitConfig(conf)
		actors.SetConfig(conf)
	},
}

var rootDir string

func main() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "working directory, defaults to ~/equityrocket/")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildConductor wires the registry, the settlement asset and the journal from config.
func buildConductor() (*eventconductor.Conductor, *journal.Journal, error) {
	conf := actors.MakeOrGetConfig()
	j, err := journal.Open(actors.JournalPath())
	if err != nil {
		return nil, nil, err
	}
	token := settlement.NewToken(
		conf.GetString("settlementSymbol"),
		uint8(conf.GetUint("settlementDecimals")),
		conf.GetString("settlementIssuer"),
	)
	reg := registry.New(uint8(conf.GetUint("equityDecimals")), token)
	return eventconductor.New(reg, token, j), j, nil
}
