package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/internal/api"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
	"github.com/systmms/commonspack/pkg/apierror"
	"github.com/systmms/commonspack/pkg/protocol"
)

func NewRequestCommand(cfg *config.Config) *cobra.Command {
	var (
		data     []string
		asJSON   bool
		noAuth   bool
		encrypt  bool
		adapters []string
		headers  []string
		metrics  bool
	)

	cmd := &cobra.Command{
		Use:   "request METHOD URL",
		Short: "Send an authenticated request through the API layer",
		Long: `Send a request with the app's base headers, stored token, adapters and
retry rules, then print the status and body.

URL may be absolute or relative to Api.scheme + Api.host + Api.basePath.

Adapters: ` + strings.Join(protocolAdapterNames(), ", ") + `

Examples:
  commonspack request GET /accounts
  commonspack request POST /transfers --data amount=10 --data to=123 --json
  commonspack request GET /cards --adapter device-id --adapter domain=cards
  commonspack request GET /public/rates --no-auth --adapter timeout=5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			params, err := parseKeyValues(data, "--data")
			if err != nil {
				return err
			}
			extra, err := parseKeyValues(headers, "--header")
			if err != nil {
				return err
			}
			set, err := protocol.ParseAdapterSet(adapters)
			if err != nil {
				return dserrors.UserError{
					Message:    "Invalid adapter",
					Details:    err.Error(),
					Suggestion: "Use name or name=arg, e.g. --adapter timeout=10s",
					Err:        err,
				}
			}

			flags, _ := loadFlags(cfg)
			client := api.New(api.Options{
				Reader:  cfg.Reader,
				Storage: openStorage(cfg),
				Flags:   flags,
				Logger:  cfg.Logger,
				Metrics: metrics,
			})

			call := api.Call{
				Method:    strings.ToUpper(args[0]),
				URL:       args[1],
				Params:    params,
				NoAuth:    noAuth,
				Encrypted: encrypt,
				Adapters:  set,
			}
			if len(extra) > 0 {
				call.Headers = make(map[string]string, len(extra))
				for k, v := range extra {
					call.Headers[k] = fmt.Sprint(v)
				}
			}
			if asJSON {
				call.Encoding = api.EncodingJSON
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resp, err := client.Do(ctx, call)
			if resp != nil {
				printResponse(cmd.OutOrStdout(), resp)
			}
			if metrics {
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				if werr := api.WriteMetrics(cmd.OutOrStdout()); werr != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "metrics could not be written: %v\n", werr)
				}
			}
			if err != nil {
				// the body was already printed above
				if apierror.Is(err, apierror.Backend) {
					return err
				}
				return dserrors.RequestError(call.Method, args[1], err)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Extra header as Name=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Send parameters as a JSON body")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "Do not send the stored token")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "Request an encrypted exchange")
	cmd.Flags().StringArrayVarP(&adapters, "adapter", "a", nil, "Request adapter as name[=arg] (repeatable)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print Prometheus request metrics after the response")
	return cmd
}

func parseKeyValues(pairs []string, flag string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("Invalid %s value %q", flag, pair),
				Suggestion: fmt.Sprintf("Use %s key=value", flag),
			}
		}
		out[k] = v
	}
	return out, nil
}

func printResponse(w io.Writer, resp *api.Response) {
	_, _ = fmt.Fprintf(w, "HTTP %d\n", resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = fmt.Fprintln(w, strings.TrimRight(string(resp.Body), "\n"))
	}
}

func protocolAdapterNames() []string {
	return []string{
		string(protocol.KindEncrypted),
		string(protocol.KindTimeout) + "=DURATION",
		string(protocol.KindWithoutToken),
		string(protocol.KindDeviceID),
		string(protocol.KindChannel),
		string(protocol.KindDomain) + "=NAME",
		string(protocol.KindConnection),
		string(protocol.KindContentType) + "=TYPE",
		string(protocol.KindTrackingID),
		string(protocol.KindOriginAddress),
		string(protocol.KindReferenceOperation) + "=OP",
	}
}
