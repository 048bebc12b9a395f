package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
	"github.com/systmms/commonspack/internal/featureflags"
)

func NewFlagsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect feature flags from the FeatureToggle section",
	}
	cmd.AddCommand(newFlagsGetCommand(cfg))
	return cmd
}

func newFlagsGetCommand(cfg *config.Config) *cobra.Command {
	var (
		module    string
		valueType string
	)

	cmd := &cobra.Command{
		Use:   "get FEATURE",
		Short: "Print a feature flag for the active scheme",
		Long: `Print the value of FEATURE for the active scheme and module.

Examples:
  commonspack flags get newTransfers
  commonspack flags get quotaLimit --module cuotasModule --type string`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			store, n := loadFlags(cfg)
			cfg.Logger.Debug("loaded %d feature flags", n)

			scheme := activeScheme(cfg.Reader)
			mod := featureflags.Module(module)
			feature := args[0]

			raw := featureflags.Value[interface{}](store, feature, scheme, mod, nil)
			if raw == nil {
				return dserrors.ConfigError{
					Field:      featureflags.ConfigSection,
					Value:      feature,
					Message:    fmt.Sprintf("feature not set for scheme %s, module %s", scheme, mod),
					Suggestion: "Check the FeatureToggle section of the configuration document",
				}
			}

			out := cmd.OutOrStdout()
			switch valueType {
			case "", "any":
				_, _ = fmt.Fprintln(out, raw)
			case "bool":
				_, _ = fmt.Fprintln(out, store.Bool(feature, scheme, mod))
			case "string":
				_, _ = fmt.Fprintln(out, store.String(feature, scheme, mod))
			default:
				return dserrors.UserError{
					Message:    fmt.Sprintf("Unknown value type %q", valueType),
					Suggestion: "Use --type bool, string or any",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&module, "module", string(featureflags.MainApp), "Feature module")
	cmd.Flags().StringVar(&valueType, "type", "any", "Value type: bool, string or any")
	return cmd
}
