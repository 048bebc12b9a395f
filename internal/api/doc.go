// Package api is the authenticated request layer.
//
// Every call goes through the same pipeline: the URL is resolved against
// the configured base, parameters are encoded, encryption is resolved
// against the debugging proxy rule, base headers are composed (token
// included when one is stored), adapters are folded over the request and
// the result is submitted through a shared *http.Client. A lost connection
// is resubmitted exactly once. Every failure reaches the caller as an
// *apierror.Error.
//
//	client := api.New(api.Options{Reader: reader, Storage: store})
//	account, _, err := api.GetJSON[Account](ctx, client, "/accounts/me")
package api
