package admin

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
)

func newHardwareCommand(o *options) *cobra.Command {
	hwid := &cobra.Command{
		Use:   "hwid",
		Short: "Manage hardware bans",
	}

	setBanned := func(banned bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := parseHardwareID(args[0])
			if err != nil {
				return err
			}
			return o.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.SetHardwareBanned(cmd.Context(), id, banned); err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						return fmt.Errorf("hardware %d not found", id)
					}
					return err
				}
				state := "unbanned"
				if banned {
					state = "banned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Hardware %d %s\n", id, state)
				return nil
			})
		}
	}

	ban := &cobra.Command{
		Use:   "ban <id>",
		Short: "Ban a hardware record; its users can no longer log in",
		Args:  cobra.ExactArgs(1),
		RunE:  setBanned(true),
	}
	unban := &cobra.Command{
		Use:   "unban <id>",
		Short: "Lift a hardware ban",
		Args:  cobra.ExactArgs(1),
		RunE:  setBanned(false),
	}
	users := &cobra.Command{
		Use:   "users <id>",
		Short: "List users bound to a hardware record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseHardwareID(args[0])
			if err != nil {
				return err
			}
			return o.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.UsersByHardware(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No users bound to hardware %d\n", id)
					return nil
				}
				for _, u := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.ID, u.Username)
				}
				return nil
			})
		},
	}

	hwid.AddCommand(ban, unban, users)
	return hwid
}
