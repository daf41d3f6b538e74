package actors

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"equityrocket/engine/library"
)

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	config.SetDefault("rootDir", filepath.Join(homeDir, "equityrocket")+"/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		library.LogCLI(err.Error(), 4)
	}
	config.SetDefault("flatFileDir", "data/")
	config.SetDefault("journalFile", "journal.db")
	config.SetDefault("metricsAddr", "127.0.0.1:9464")
	config.SetDefault("logLevel", 4)
	config.SetDefault("equityDecimals", 2)
	config.SetDefault("settlementDecimals", 6)
	config.SetDefault("settlementSymbol", "USDT")
	// nobody can issue settlement funds until this is set
	config.SetDefault("settlementIssuer", "")
	config.SetDefault("dumpOnShutdown", true)
	// Create our working directory and config file if not exist
	initRootDir(config)
	touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	library.SetLogLevel(config.GetInt("logLevel"))
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.MkdirAll(conf.GetString("rootDir"), 0755)
		if err != nil {
			library.LogCLI(err, 0)
		}
	}
}

func touch(name string) {
	f, err := os.OpenFile(name, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		library.LogCLI(err, 0)
		return
	}
	f.Close()
}

var conf *viper.Viper

func MakeOrGetConfig() *viper.Viper {
	return conf
}

func SetConfig(config *viper.Viper) {
	conf = config
}

// JournalPath is where accepted transactions are stored.
func JournalPath() string {
	return conf.GetString("rootDir") + conf.GetString("journalFile")
}
