package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
)

func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read values from the configuration document",
	}
	cmd.AddCommand(newConfigGetCommand(cfg))
	return cmd
}

func newConfigGetCommand(cfg *config.Config) *cobra.Command {
	var valueType string

	cmd := &cobra.Command{
		Use:   "get KEY SUBKEY",
		Short: "Print a configuration value for the active scheme",
		Long: `Print the value stored under KEY/SUBKEY. When the subkey holds a
per-scheme mapping, the entry for the active scheme is printed.

Examples:
  commonspack config get Api host
  commonspack config get Api timeout --type number
  commonspack config get App stubs --type bool --scheme main-qa`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			reader := cfg.Reader
			key, subKey := args[0], args[1]

			raw, ok := reader.Value(key, subKey)
			if !ok {
				return dserrors.ConfigError{
					Field:      key + "/" + subKey,
					Message:    fmt.Sprintf("no value for scheme %s", reader.SchemeName()),
					Suggestion: "Check the key names and the scheme entries in the document",
				}
			}

			out := cmd.OutOrStdout()
			switch valueType {
			case "", "any":
				_, _ = fmt.Fprintln(out, raw)
			case "string":
				_, _ = fmt.Fprintln(out, reader.String(key, subKey))
			case "bool":
				_, _ = fmt.Fprintln(out, reader.Bool(key, subKey))
			case "number":
				_, _ = fmt.Fprintln(out, reader.Float(key, subKey))
			default:
				return dserrors.UserError{
					Message:    fmt.Sprintf("Unknown value type %q", valueType),
					Suggestion: "Use --type string, bool, number or any",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&valueType, "type", "any", "Value type: string, bool, number or any")
	return cmd
}
