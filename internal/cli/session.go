package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"study-client/internal/infra"
)

var errNoSharedSession = errors.New("session commands need redis.addr: tokens are only shared through Redis")

// NewSessionCmd stores or forgets the access token shared by client processes.
func NewSessionCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the shared sign-in token",
	}

	var token string
	login := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.session == nil {
				return errNoSharedSession
			}
			if err := rt.session.Save(cmd.Context(), token); err != nil {
				return err
			}
			if exp, ok := infra.Expiry(token); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "signed in until %s\n", exp.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	login.Flags().StringVar(&token, "token", "", "access token")
	_ = login.MarkFlagRequired("token")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.session == nil {
				return errNoSharedSession
			}
			return rt.session.Delete(cmd.Context())
		},
	}

	cmd.AddCommand(login, logout)
	return cmd
}
