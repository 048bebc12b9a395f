package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"

	"github.com/systmms/commonspack/pkg/apierror"
	"github.com/systmms/commonspack/pkg/protocol"
)

// Encoding selects where parameters go
type Encoding int

const (
	// EncodingURL puts parameters in the query string for GET, HEAD and
	// DELETE, and in a form body otherwise.
	EncodingURL Encoding = iota
	// EncodingQuery always puts parameters in the query string
	EncodingQuery
	// EncodingJSON sends parameters as a JSON object body
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingQuery:
		return "query"
	case EncodingJSON:
		return "json"
	}
	return "url"
}

func queryMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

// encodeParams writes params into r according to enc
func encodeParams(r *protocol.Request, params map[string]interface{}, enc Encoding) error {
	if len(params) == 0 {
		return nil
	}

	if enc == EncodingJSON {
		body, err := json.Marshal(params)
		if err != nil {
			return &apierror.EncodingError{Err: err}
		}
		r.Body = body
		r.Header.Set(protocol.HeaderContentType, protocol.ContentTypeJSON)
		return nil
	}

	values := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := addComponent(values, k, params[k]); err != nil {
			return &apierror.EncodingError{Err: err}
		}
	}
	encoded := values.Encode()

	if enc == EncodingQuery || queryMethod(r.Method) {
		if r.URL.RawQuery != "" {
			r.URL.RawQuery += "&" + encoded
		} else {
			r.URL.RawQuery = encoded
		}
		return nil
	}

	r.Body = []byte(encoded)
	r.Header.Set(protocol.HeaderContentType, protocol.ContentTypeForm)
	return nil
}

// addComponent flattens v under key. Nested mappings use key[sub], lists
// use key[] and booleans are sent as 1 or 0.
func addComponent(values url.Values, key string, v interface{}) error {
	switch x := v.(type) {
	case nil:
		values.Add(key, "")
		return nil
	case string:
		values.Add(key, x)
		return nil
	case bool:
		if x {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
		return nil
	case fmt.Stringer:
		values.Add(key, x.String())
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		values.Add(key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		values.Add(key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		values.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.String:
		values.Add(key, rv.String())
	case reflect.Bool:
		return addComponent(values, key, rv.Bool())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := addComponent(values, key+"[]", rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("parameter %q: map keys must be strings", key)
		}
		subKeys := make([]string, 0, rv.Len())
		for _, mk := range rv.MapKeys() {
			subKeys = append(subKeys, mk.String())
		}
		sort.Strings(subKeys)
		for _, sk := range subKeys {
			elem := rv.MapIndex(reflect.ValueOf(sk).Convert(rv.Type().Key()))
			if err := addComponent(values, key+"["+sk+"]", elem.Interface()); err != nil {
				return err
			}
		}
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			values.Add(key, "")
			return nil
		}
		return addComponent(values, key, rv.Elem().Interface())
	default:
		return fmt.Errorf("parameter %q: unsupported type %T", key, v)
	}
	return nil
}
