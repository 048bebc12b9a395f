// Package apierror translates transport and backend failures into a closed
// set of error kinds.
//
// Transport errors are classified by platform code (CodeOf). Responses
// whose status falls outside the accepted set arrive as *ValidationError
// and are decoded into a BackendError when the body matches the
// {title, body, code, data} shape, or kept raw otherwise.
//
//	resp, err := client.Do(ctx, call)
//	if apierror.Is(err, apierror.NoConnectivity) {
//	    // show the offline banner
//	}
package apierror
