package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
	"github.com/systmms/commonspack/internal/logging"
)

func NewTokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the session token kept in the OS keyring",
	}
	cmd.AddCommand(
		newTokenSetCommand(cfg),
		newTokenShowCommand(cfg),
		newTokenRemoveCommand(cfg),
	)
	return cmd
}

func newTokenSetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "set VALUE",
		Short: "Store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return dserrors.UserError{
					Message:    "Token is empty",
					Suggestion: "Pass the bearer token value without the Bearer prefix",
				}
			}
			store := openStorage(cfg)
			if err := store.Set(config.TokenKey, args[0]); err != nil {
				return dserrors.StorageError("store token", err)
			}
			cfg.Logger.Info("Token stored in keyring service %s", store.Service())
			return nil
		},
	}
}

func newTokenShowCommand(cfg *config.Config) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored session token (redacted unless --reveal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage(cfg)
			buf, ok := store.RetrieveSecret(config.TokenKey)
			if !ok {
				return dserrors.UserError{
					Message:    "No token stored",
					Suggestion: "Store one with 'commonspack token set <value>'",
				}
			}
			defer buf.Destroy()

			out := cmd.OutOrStdout()
			return buf.WithBytes(func(token []byte) error {
				if reveal {
					_, err := fmt.Fprintln(out, string(token))
					return err
				}
				_, err := fmt.Fprintf(out, "%s (%d chars)\n", logging.Secret(token), len(token))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the token in clear text")
	return cmd
}

func newTokenRemoveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage(cfg)
			if err := store.RemoveToken(); err != nil {
				return dserrors.StorageError("remove token", err)
			}
			cfg.Logger.Info("Token removed")
			return nil
		},
	}
}

func NewLogoutCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session credentials from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage(cfg)
			if err := store.CleanOnLogout(); err != nil {
				return dserrors.StorageError("logout", err)
			}
			cfg.Logger.Info("Logged out")
			return nil
		},
	}
}
