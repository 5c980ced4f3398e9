package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rulegate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rulegate",
	Short: "Rules API gateway",
	Long:  `Rulegate - a small HTTP API for rules and categories backed by a remote REST store.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.Init(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
}
