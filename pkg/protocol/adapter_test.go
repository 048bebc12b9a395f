package protocol

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = Environment{ChannelID: "42", DeviceID: "device-1"}

func newTestRequest(t *testing.T) Request {
	t.Helper()
	req, err := NewRequest(http.MethodGet, "https://api.example.com/v1/accounts")
	require.NoError(t, err)
	req.Header.Set(HeaderAuthorization, "Bearer abc")
	return req
}

func TestAdapterVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		adapter Adapter
		check   func(t *testing.T, r Request)
	}{
		{
			name:    "encrypted",
			adapter: Encrypted(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "on", HeaderValue(r.Header, HeaderEncrypt))
			},
		},
		{
			name:    "timeout",
			adapter: Timeout(3 * time.Second),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, 3*time.Second, r.Timeout)
			},
		},
		{
			name:    "without token",
			adapter: WithoutToken(),
			check: func(t *testing.T, r Request) {
				assert.Empty(t, HeaderValue(r.Header, HeaderAuthorization))
			},
		},
		{
			name:    "device id",
			adapter: DeviceID(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "device-1", HeaderValue(r.Header, HeaderDeviceID))
				assert.Equal(t, "device-1", HeaderValue(r.Header, HeaderTrackingID))
			},
		},
		{
			name:    "channel",
			adapter: Channel(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "42", HeaderValue(r.Header, HeaderChannel))
			},
		},
		{
			name:    "domain",
			adapter: Domain("cards"),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "42", HeaderValue(r.Header, HeaderChannel))
				assert.Equal(t, "cards", HeaderValue(r.Header, HeaderDomainTracker))
			},
		},
		{
			name:    "connection",
			adapter: Connection(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "close", HeaderValue(r.Header, HeaderConnection))
			},
		},
		{
			name:    "content type",
			adapter: ContentType("text/plain"),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "text/plain", HeaderValue(r.Header, HeaderContentType))
			},
		},
		{
			name:    "tracking id",
			adapter: TrackingID(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "device-1", HeaderValue(r.Header, HeaderTrackingID))
				assert.Empty(t, HeaderValue(r.Header, HeaderDeviceID))
			},
		},
		{
			name:    "origin address",
			adapter: OriginAddress(),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "111", HeaderValue(r.Header, HeaderOriginAddress))
			},
		},
		{
			name:    "reference operation",
			adapter: ReferenceOperation("transfer"),
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "transfer", HeaderValue(r.Header, HeaderReferenceOperation))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			original := newTestRequest(t)
			adapted := tt.adapter.Adapt(original, testEnv)
			tt.check(t, adapted)

			// the input is never mutated
			assert.Equal(t, "Bearer abc", HeaderValue(original.Header, HeaderAuthorization))
			assert.Len(t, original.Header, 1)
			assert.Zero(t, original.Timeout)
		})
	}
}

func TestAdapterSetDeduplicatesByKind(t *testing.T) {
	t.Parallel()

	set := NewAdapterSet(
		Timeout(time.Second),
		Domain("a"),
		Timeout(5*time.Second),
		Domain("b"),
		Channel(),
	)

	assert.Equal(t, []Kind{KindTimeout, KindDomain, KindChannel}, set.Kinds())

	req := set.Apply(newTestRequest(t), testEnv)
	assert.Equal(t, 5*time.Second, req.Timeout)
	assert.Equal(t, "b", HeaderValue(req.Header, HeaderDomainTracker))
}

func TestAdapterSetWithConnection(t *testing.T) {
	t.Parallel()

	var empty AdapterSet
	withConn := empty.WithConnection()
	assert.Equal(t, []Kind{KindConnection}, withConn.Kinds())
	assert.Equal(t, 0, empty.Len(), "sets are values")

	set := NewAdapterSet(Connection(), Encrypted()).WithConnection()
	assert.Equal(t, []Kind{KindConnection, KindEncrypted}, set.Kinds())

	req := NewAdapterSet(Encrypted()).WithConnection().Apply(newTestRequest(t), testEnv)
	assert.Equal(t, "close", HeaderValue(req.Header, HeaderConnection))
}

func TestAdapterSetWithout(t *testing.T) {
	t.Parallel()

	set := NewAdapterSet(Encrypted(), Channel())
	trimmed := set.Without(KindEncrypted)

	assert.False(t, trimmed.Contains(KindEncrypted))
	assert.True(t, trimmed.Contains(KindChannel))
	assert.True(t, set.Contains(KindEncrypted))
}

func TestAdapterSetOrderMatters(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	req.Header.Set(HeaderTrackingID, "caller")

	// DeviceID overwrites Tracking-Id, then ContentType runs after
	out := NewAdapterSet(DeviceID(), ContentType("application/xml")).Apply(req, testEnv)
	assert.Equal(t, "device-1", HeaderValue(out.Header, HeaderTrackingID))
	assert.Equal(t, "application/xml", HeaderValue(out.Header, HeaderContentType))
}

func TestRequestBuild(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	req.Method = http.MethodPost
	req.Body = []byte(`{"a":1}`)
	req = Timeout(time.Minute).Adapt(req, testEnv)

	httpReq, cancel, err := req.Build(context.Background())
	require.NoError(t, err)
	defer cancel()

	assert.Equal(t, http.MethodPost, httpReq.Method)
	assert.Equal(t, "Bearer abc", HeaderValue(httpReq.Header, HeaderAuthorization))
	assert.Equal(t, int64(7), httpReq.ContentLength)
	_, hasDeadline := httpReq.Context().Deadline()
	assert.True(t, hasDeadline)
}

func TestNewRequestRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(http.MethodGet, "/v1/accounts")
	assert.Error(t, err)

	_, err = NewRequest(http.MethodGet, "http://[::1")
	assert.Error(t, err)
}

func TestParseAdapter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{expr: "encrypted", want: "encrypted"},
		{expr: "timeout=2.5", want: "timeout=2.5s"},
		{expr: "timeout=1500ms", want: "timeout=1.5s"},
		{expr: "domain=cards", want: "domain=cards"},
		{expr: "reference-operation=pay", want: "reference-operation=pay"},
		{expr: "domain", wantErr: true},
		{expr: "encrypted=yes", wantErr: true},
		{expr: "timeout=soon", wantErr: true},
		{expr: "teleport", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()

			a, err := ParseAdapter(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestParseAdapterSet(t *testing.T) {
	t.Parallel()

	set, err := ParseAdapterSet([]string{"channel", "timeout=1", "timeout=2"})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindChannel, KindTimeout}, set.Kinds())

	_, err = ParseAdapterSet([]string{"nope"})
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(KindChannel, noArg(Channel())))
	assert.Error(t, r.Register(KindChannel, noArg(Channel())))
	assert.Error(t, r.Register(KindDomain, nil))
}

type staticCredential string

func (c staticCredential) WithBytes(fn func([]byte) error) error {
	return fn([]byte(c))
}

type brokenCredential struct{}

func (brokenCredential) WithBytes(func([]byte) error) error {
	return errors.New("enclave destroyed")
}

func TestRequestBuildCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(r Request) Request
		want    string
		wantErr bool
	}{
		{
			name:    "credential opened at build",
			prepare: func(r Request) Request { r.Credential = staticCredential("tok"); return r },
			want:    "Bearer tok",
		},
		{
			name: "explicit header wins",
			prepare: func(r Request) Request {
				r.Credential = staticCredential("tok")
				SetHeader(r.Header, HeaderAuthorization, "Basic xyz")
				return r
			},
			want: "Basic xyz",
		},
		{
			name: "without token drops credential",
			prepare: func(r Request) Request {
				r.Credential = staticCredential("tok")
				return WithoutToken().Adapt(r, testEnv)
			},
			want: "",
		},
		{
			name:    "unreadable credential",
			prepare: func(r Request) Request { r.Credential = brokenCredential{}; return r },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := NewRequest(http.MethodGet, "https://api.example.com/v1/accounts")
			require.NoError(t, err)
			req = tt.prepare(req)

			httpReq, cancel, err := req.Build(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer cancel()

			assert.Equal(t, tt.want, HeaderValue(httpReq.Header, HeaderAuthorization))
			assert.NotContains(t, HeaderValue(req.Header, HeaderAuthorization), "tok", "request value never holds the token")
		})
	}
}

func TestSetHeaderKeepsSpelling(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Domain-Tracker", "old")
	SetHeader(h, HeaderDomainTracker, "cards")

	assert.Equal(t, http.Header{"X-DOMAIN-TRACKER": []string{"cards"}}, h)
	assert.Equal(t, "cards", HeaderValue(h, "x-domain-tracker"))

	DelHeader(h, "x-domain-tracker")
	assert.Empty(t, h)
}
