package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/peachpow/gominer/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "peachminer",
	Short: "Peach proof-of-work CPU miner",
	Long: `peachminer connects to a Peach mining pool over Stratum, builds the
per-block tile cache, and searches for a nonce meeting the pool's
difficulty target.`,
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Connect to a pool and mine",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		log := newLogger(cfg.LogLevel)
		return runMiner(cfg, log)
	},
}

var hwInfoCmd = &cobra.Command{
	Use:   "hwinfo",
	Short: "Display detected hardware and launch-shape estimates",
	Run: func(cmd *cobra.Command, args []string) {
		printHardwareInfo()
	},
}

func init() {
	mineCmd.Flags().StringVarP(&cfg.PoolAddr, "pool", "p", cfg.PoolAddr, "pool address, host:port")
	mineCmd.Flags().StringVarP(&cfg.Wallet, "wallet", "u", cfg.Wallet, "wallet address to mine to")
	mineCmd.Flags().StringVarP(&cfg.Worker, "worker", "n", cfg.Worker, "worker name")
	mineCmd.Flags().IntVarP(&cfg.Workers, "devices", "d", cfg.Workers, "number of mining devices (0 = auto, one per core)")
	mineCmd.Flags().StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "trace, debug, info, warn, error")
	mineCmd.Flags().StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "local status API bind address, empty disables it")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(hwInfoCmd)
}

func newLogger(level string) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return logrus.NewEntry(log)
}

func printHardwareInfo() {
	acc := newAccelerator()
	stats := acc.GetStats()
	fmt.Printf("host: %s, cores: %d\n", runtime.GOARCH, stats["cores"])
	for k, v := range stats {
		fmt.Printf("  %s: %v\n", k, v)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
