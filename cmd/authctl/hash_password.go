// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/users/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Read one line from stdin and print its bcrypt digest, suitable for the
members.password_hash column. The password never appears in the process list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			digest, err := sec.NewBcryptHasher(cost).Hash(password)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), digest)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost+2, "bcrypt cost")

	return cmd
}

// readPassword reads the first line of input without its line terminator.
func readPassword(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("authctl: read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	switch {
	case password == "":
		return "", errors.New("authctl: empty password")
	case len(password) > auth.MaxPasswordLength:
		return "", fmt.Errorf("authctl: password longer than %d bytes", auth.MaxPasswordLength)
	}

	return password, nil
}
