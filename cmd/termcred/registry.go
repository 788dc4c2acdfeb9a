package main

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/dcrodman/termcred/internal/core/auth"
	"github.com/dcrodman/termcred/internal/core/data"
	"github.com/dcrodman/termcred/internal/core/encryption"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account management tools",
}

var accountAddCmd = &cobra.Command{
	Use:   "add [username] [password]",
	Short: "Registers new accounts in the database",
	Args:  cobra.MaximumNArgs(2),
	RunE:  AccountAddCommand,
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Deletes accounts from the database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  AccountDeleteCommand,
}

var accountBanCmd = &cobra.Command{
	Use:   "ban [username]",
	Short: "Suspends an account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  AccountBanCommand,
}

var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Terminal registration tools",
}

var terminalAddCmd = &cobra.Command{
	Use:   "add <terminal-id> [hex-key]",
	Short: "Registers a terminal, generating a key if none is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  TerminalAddCommand,
}

var terminalDeleteCmd = &cobra.Command{
	Use:   "delete <terminal-id>",
	Short: "Removes a terminal registration",
	Args:  cobra.ExactArgs(1),
	RunE:  TerminalDeleteCommand,
}

var terminalDisableCmd = &cobra.Command{
	Use:   "disable <terminal-id>",
	Short: "Stops a terminal from authenticating without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setTerminalActive(cmd, args[0], false) },
}

var terminalEnableCmd = &cobra.Command{
	Use:   "enable <terminal-id>",
	Short: "Allows a disabled terminal to authenticate again",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setTerminalActive(cmd, args[0], true) },
}

var (
	PermanentFlag bool
	UnbanFlag     bool
)

func initDB() (*gorm.DB, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := data.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := data.Migrate(db); err != nil {
		return nil, nil, err
	}
	return db, func() { _ = data.Close(db) }, nil
}

func AccountAddCommand(cmd *cobra.Command, args []string) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	username, args := popArg(args, "Username")
	password, _ := popArg(args, "Password")

	// Anything the terminals can't encode could never log in.
	for _, field := range []string{username, password} {
		if _, err := encryption.EncodeString(field); err != nil {
			return err
		}
	}

	account, err := findAccount(db, username)
	if err != nil {
		return err
	} else if account != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "account '%s' already exists; skipping\n", username)
		return nil
	}

	account = &data.Account{Username: username, Password: auth.HashPassword(password)}
	if err := data.CreateAccount(db, account); err != nil {
		return fmt.Errorf("error creating account: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created account for '%s' (ID: %d)\n", account.Username, account.ID)
	return nil
}

func AccountDeleteCommand(cmd *cobra.Command, args []string) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	username, _ := popArg(args, "Username")
	account, err := findAccount(db, username)
	if err != nil {
		return err
	} else if account == nil {
		return fmt.Errorf("account '%s' not found", username)
	}

	if PermanentFlag {
		err = data.PermanentlyDeleteAccount(db, account)
	} else {
		err = data.DeleteAccount(db, account)
	}
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "deleted account")
	return nil
}

func AccountBanCommand(cmd *cobra.Command, args []string) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	username, _ := popArg(args, "Username")
	account, err := findAccount(db, username)
	if err != nil {
		return err
	} else if account == nil {
		return fmt.Errorf("account '%s' not found", username)
	}

	account.Banned = !UnbanFlag
	if err := data.UpdateAccount(db, account); err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "account '%s' banned: %v\n", username, account.Banned)
	return nil
}

func TerminalAddCommand(cmd *cobra.Command, args []string) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	var key encryption.TerminalKey
	if len(args) == 2 {
		if key, err = encryption.ParseTerminalKey(args[1]); err != nil {
			return err
		}
	} else if _, err := rand.Read(key[:]); err != nil {
		return fmt.Errorf("error generating terminal key: %w", err)
	}

	terminal := &data.Terminal{TerminalID: args[0], Key: key.String(), Active: true}
	if err := data.CreateTerminal(db, terminal); err != nil {
		return fmt.Errorf("error registering terminal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registered terminal '%s' with key %s\n", terminal.TerminalID, terminal.Key)
	return nil
}

func TerminalDeleteCommand(cmd *cobra.Command, args []string) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	terminal, err := data.FindTerminal(db, args[0])
	if err != nil {
		return fmt.Errorf("error looking up terminal: %w", err)
	} else if terminal == nil {
		return fmt.Errorf("terminal '%s' not found", args[0])
	}
	if err := data.DeleteTerminal(db, terminal); err != nil {
		return fmt.Errorf("error deleting terminal: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "deleted terminal")
	return nil
}

// setTerminalActive toggles whether terminalID may authenticate. Running
// servers pick the change up once their cached key expires (auth.key_cache_ttl).
func setTerminalActive(cmd *cobra.Command, terminalID string, active bool) error {
	db, closeDB, err := initDB()
	if err != nil {
		return err
	}
	defer closeDB()

	terminal, err := data.FindTerminal(db, terminalID)
	if err != nil {
		return fmt.Errorf("error looking up terminal: %w", err)
	} else if terminal == nil {
		return fmt.Errorf("terminal '%s' not found", terminalID)
	}

	terminal.Active = active
	if err := data.UpdateTerminal(db, terminal); err != nil {
		return fmt.Errorf("error updating terminal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "terminal '%s' active: %v\n", terminalID, active)
	return nil
}

func popArg(args []string, prompt string) (string, []string) {
	if len(args) == 1 {
		return args[0], nil
	} else if len(args) > 1 {
		return args[0], args[1:]
	}

	fmt.Printf("%s: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return scanner.Text(), args
}

func findAccount(db *gorm.DB, username string) (*data.Account, error) {
	account, err := data.FindAccountByUsername(db, username)
	if err != nil {
		return nil, fmt.Errorf("error looking up account: %w", err)
	}
	return account, nil
}
