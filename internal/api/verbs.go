package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/systmms/commonspack/pkg/apierror"
	"github.com/systmms/commonspack/pkg/protocol"
)

// Decode runs call and decodes the JSON body into T. A 204 response yields
// a nil value and no error.
func Decode[T any](ctx context.Context, c *Client, call Call) (*T, *Response, error) {
	resp, err := c.Do(ctx, call)
	if err != nil {
		return nil, resp, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, resp, nil
	}

	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		translated := apierror.Translate(&apierror.DecodeError{Err: err}, resp.Body)
		translated.StatusCode = resp.StatusCode
		c.metrics.RecordFailure(string(translated.Kind))
		return nil, resp, translated
	}
	return &out, resp, nil
}

// Get sends a GET request. headers override the base headers.
func (c *Client) Get(ctx context.Context, url string, params map[string]interface{}, enc Encoding, headers map[string]string) (*Response, error) {
	return c.Do(ctx, verbCall(http.MethodGet, url, params, enc, headers))
}

// Post sends a POST request
func (c *Client) Post(ctx context.Context, url string, params map[string]interface{}, enc Encoding, headers map[string]string) (*Response, error) {
	return c.Do(ctx, verbCall(http.MethodPost, url, params, enc, headers))
}

// Put sends a PUT request
func (c *Client) Put(ctx context.Context, url string, params map[string]interface{}, enc Encoding, headers map[string]string) (*Response, error) {
	return c.Do(ctx, verbCall(http.MethodPut, url, params, enc, headers))
}

// Delete sends a DELETE request
func (c *Client) Delete(ctx context.Context, url string, params map[string]interface{}, enc Encoding, headers map[string]string) (*Response, error) {
	return c.Do(ctx, verbCall(http.MethodDelete, url, params, enc, headers))
}

func verbCall(method, url string, params map[string]interface{}, enc Encoding, headers map[string]string) Call {
	return Call{
		Method:   method,
		URL:      url,
		Params:   params,
		Encoding: enc,
		Headers:  headers,
	}
}

// GetJSON fetches uri, relative to the configured base URL, and decodes
// the JSON response.
func GetJSON[T any](ctx context.Context, c *Client, uri string) (*T, *Response, error) {
	return Decode[T](ctx, c, jsonCall(http.MethodGet, uri, nil))
}

// PostJSON sends params as a JSON body to uri and decodes the response
func PostJSON[T any](ctx context.Context, c *Client, uri string, params map[string]interface{}) (*T, *Response, error) {
	return Decode[T](ctx, c, jsonCall(http.MethodPost, uri, params))
}

// PutJSON sends params as a JSON body to uri and decodes the response
func PutJSON[T any](ctx context.Context, c *Client, uri string, params map[string]interface{}) (*T, *Response, error) {
	return Decode[T](ctx, c, jsonCall(http.MethodPut, uri, params))
}

// DeleteJSON deletes uri and decodes the response
func DeleteJSON[T any](ctx context.Context, c *Client, uri string) (*T, *Response, error) {
	return Decode[T](ctx, c, jsonCall(http.MethodDelete, uri, nil))
}

func jsonCall(method, uri string, params map[string]interface{}) Call {
	return Call{
		Method:   method,
		URL:      uri,
		Params:   params,
		Encoding: EncodingJSON,
		Headers:  map[string]string{protocol.HeaderContentType: protocol.ContentTypeJSON},
	}
}
