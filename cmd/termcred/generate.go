package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/dcrodman/termcred/internal/core/auth"
	"github.com/dcrodman/termcred/internal/core/encryption"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Prints the encPassword a terminal would send for a set of credentials",
	RunE:  GenerateCommand,
}

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Dumps every intermediate stage of encPassword generation",
	RunE:  TraceCommand,
}

var (
	IDFlag       string
	PasswordFlag string
	TimeFlag     string
	KeyFlag      string
	JSONFlag     bool
	TerminalFlag string
)

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&IDFlag, "id", "u", "", "User identifier")
	cmd.Flags().StringVarP(&PasswordFlag, "password", "p", "", "Password")
	cmd.Flags().StringVar(&TimeFlag, "time", "", "Client time as RFC 3339 (defaults to now)")
	cmd.Flags().StringVarP(&KeyFlag, "key", "k", "", "Hex-encoded terminal key (defaults to terminal.key from the config)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("password")
}

// credentialInputs resolves the terminal key and client time from the flags,
// falling back to the config file.
func credentialInputs() (encryption.TerminalKey, time.Time, error) {
	var key encryption.TerminalKey
	cfg, err := loadConfig()
	if err != nil {
		return key, time.Time{}, err
	}

	if KeyFlag != "" {
		key, err = encryption.ParseTerminalKey(KeyFlag)
	} else if cfg.Terminal.Key != "" {
		key, err = cfg.TerminalKey()
	} else {
		err = fmt.Errorf("no terminal key: pass --key or set terminal.key")
	}
	if err != nil {
		return key, time.Time{}, err
	}

	location, err := cfg.ClockLocation()
	if err != nil {
		return key, time.Time{}, err
	}
	clientTime := time.Now()
	if TimeFlag != "" {
		if clientTime, err = time.Parse(time.RFC3339, TimeFlag); err != nil {
			return key, time.Time{}, fmt.Errorf("invalid --time: %w", err)
		}
	}
	return key, clientTime.In(location).Truncate(time.Second), nil
}

func GenerateCommand(cmd *cobra.Command, args []string) error {
	key, clientTime, err := credentialInputs()
	if err != nil {
		return err
	}

	if !JSONFlag {
		encPassword, err := encryption.GenerateTerminalPassword(IDFlag, PasswordFlag, clientTime, key[:])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), encPassword)
		return nil
	}

	req, err := auth.NewLoginRequest(TerminalFlag, IDFlag, PasswordFlag, clientTime, key[:])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

type stages struct {
	ClientTime      string
	TerminalKey     []byte
	TransmitKey     []byte
	EncodedID       []byte
	EncodedPassword []byte
	Interleaved     []byte
	Padded          []byte
	Ciphertext      []byte
	EncPassword     string
}

func TraceCommand(cmd *cobra.Command, args []string) error {
	key, clientTime, err := credentialInputs()
	if err != nil {
		return err
	}
	trace, err := traceStages(IDFlag, PasswordFlag, clientTime, key)
	if err != nil {
		return err
	}
	spew.Fdump(cmd.OutOrStdout(), trace)
	return nil
}

func traceStages(id, password string, clientTime time.Time, key encryption.TerminalKey) (*stages, error) {
	s := &stages{ClientTime: clientTime.Format(time.RFC3339), TerminalKey: key[:]}

	var err error
	if s.EncodedID, err = encryption.EncodeString(id); err != nil {
		return nil, err
	}
	if s.EncodedPassword, err = encryption.EncodeString(password); err != nil {
		return nil, err
	}
	s.Interleaved = encryption.Interleave(s.EncodedID, s.EncodedPassword)
	s.Padded = encryption.Pad(s.Interleaved)

	if s.TransmitKey, err = encryption.DeriveTransmitKey(key[:], clientTime); err != nil {
		return nil, err
	}
	if s.Ciphertext, err = encryption.CBCEncrypt(s.Padded, s.TransmitKey); err != nil {
		return nil, err
	}
	s.EncPassword = encryption.EncodeBase64(s.Ciphertext)
	return s, nil
}
