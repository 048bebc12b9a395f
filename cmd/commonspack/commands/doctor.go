package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
)

// CheckResult is one line of the doctor report
type CheckResult struct {
	Name    string
	Status  string // ok, warn, error
	Message string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, keyring and session state",
		Long: `Verify that the local setup can serve requests.

This command checks:
- Configuration document can be read and decoded
- Api base URL is configured for the active scheme
- OS keyring is reachable
- A session token is stored`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cfg)
			displayCheckResults(cmd.OutOrStdout(), results)

			failed := 0
			for _, r := range results {
				if r.Status == "error" {
					failed++
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return dserrors.CommandError{
					Command:    "doctor",
					Message:    fmt.Sprintf("%d checks failed", failed),
					Suggestion: "Fix the checks marked ✗ above and run doctor again",
				}
			}
			cfg.Logger.Info("All checks passed")
			return nil
		},
	}
	return cmd
}

func runChecks(cfg *config.Config) []CheckResult {
	var results []CheckResult

	if err := cfg.Load(); err != nil {
		results = append(results, CheckResult{Name: "config", Status: "error", Message: err.Error()})
	} else {
		reader := cfg.Reader
		results = append(results, CheckResult{
			Name:    "config",
			Status:  "ok",
			Message: fmt.Sprintf("%s (scheme %s)", cfg.Path, reader.SchemeName()),
		})

		api := reader.Api()
		if api.Host() == "" || api.Scheme() == "" {
			results = append(results, CheckResult{Name: "api", Status: "warn", Message: "Api.scheme or Api.host not set; only absolute URLs will work"})
		} else {
			results = append(results, CheckResult{Name: "api", Status: "ok", Message: api.BaseURL() + api.BasePath()})
		}

		_, n := loadFlags(cfg)
		results = append(results, CheckResult{Name: "flags", Status: "ok", Message: fmt.Sprintf("%d feature flags loaded", n)})
	}

	store := openStorage(cfg)
	if err := store.Validate(); err != nil {
		results = append(results, CheckResult{Name: "keyring", Status: "error", Message: err.Error()})
		return results
	}
	results = append(results, CheckResult{Name: "keyring", Status: "ok", Message: "service " + store.Service()})

	if store.HasValue(config.TokenKey) {
		results = append(results, CheckResult{Name: "token", Status: "ok", Message: "session token stored"})
	} else {
		results = append(results, CheckResult{Name: "token", Status: "warn", Message: "no session token; authenticated calls go out without Authorization"})
	}

	return results
}

// displayCheckResults shows check results in a formatted table
func displayCheckResults(out io.Writer, results []CheckResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, r := range results {
		status := r.Status
		switch r.Status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "⚠ " + status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}

	_ = w.Flush()
}
