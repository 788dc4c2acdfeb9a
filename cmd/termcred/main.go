package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcrodman/termcred/internal/core"
)

var ConfigFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:           "termcred",
		Short:         "Terminal credential encryption and verification tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&ConfigFlag, "config", "c", "", "Path to the config/data directory")

	addCredentialFlags(generateCmd)
	generateCmd.Flags().BoolVar(&JSONFlag, "json", false, "Print a complete login request body instead of just encPassword")
	generateCmd.Flags().StringVarP(&TerminalFlag, "terminal", "t", "", "Terminal ID to put in the login request (with --json)")
	addCredentialFlags(traceCmd)

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	accountCmd.AddCommand(accountBanCmd)
	accountDeleteCmd.Flags().BoolVar(&PermanentFlag, "permanent", false, "Permanently delete the account (as opposed to a soft delete)")
	accountBanCmd.Flags().BoolVar(&UnbanFlag, "undo", false, "Lift the ban instead")

	terminalCmd.AddCommand(terminalAddCmd)
	terminalCmd.AddCommand(terminalDeleteCmd)
	terminalCmd.AddCommand(terminalDisableCmd)
	terminalCmd.AddCommand(terminalEnableCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(terminalCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*core.Config, error) {
	cfg, err := core.LoadConfig(ConfigFlag)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}
