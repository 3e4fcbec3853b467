package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/cryptox"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword(w io.Writer, prompt string) ([]byte, error) {
	fmt.Fprint(w, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return pw, err
}

// readNewPassword asks twice and requires both answers to match.
func readNewPassword(w io.Writer) (string, error) {
	first, err := promptPassword(w, "Password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := promptPassword(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}
	if !bytes.Equal(first, second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func newUserCommand(o *options) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts",
	}

	var roles []string
	var totpSecret string
	var rawID string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a local account with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return errors.New("username must not be empty")
			}
			var id uuid.UUID
			if rawID != "" {
				parsed, err := uuid.Parse(rawID)
				if err != nil {
					return fmt.Errorf("invalid uuid %q", rawID)
				}
				id = parsed
			}

			password, err := readNewPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			hash, err := cryptox.HashPassword(password)
			if err != nil {
				return err
			}

			return o.withStore(cmd.Context(), func(st store.Store) error {
				if _, err := st.UserByUsername(cmd.Context(), username); err == nil {
					return fmt.Errorf("user %q already exists", username)
				} else if !errors.Is(err, common.ErrorNotFound) {
					return err
				}

				u, err := st.CreateUser(cmd.Context(), &models.User{
					ID:           id,
					Username:     username,
					PasswordHash: hash,
					TOTPSecret:   strings.ToUpper(totpSecret),
					Roles:        roles,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Username, u.ID)
				return nil
			})
		},
	}
	add.Flags().StringSliceVar(&roles, "role", nil, "role to grant, repeatable")
	add.Flags().StringVar(&rawID, "uuid", "", "account UUID, matching the external identity in bridged dual mode")
	add.Flags().StringVar(&totpSecret, "totp-secret", "", "base32 secret enabling two-factor login")

	user.AddCommand(add)
	return user
}
