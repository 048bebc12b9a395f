package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/featureflags"
	"github.com/systmms/commonspack/pkg/protocol"
)

// resolveEncryption decides whether the request is sent encrypted. Outside
// production, a debugging proxy on the mock server port switches
// encryption off and drops the Encrypted adapter so the proxy can read the
// traffic.
func (c *Client) resolveEncryption(encrypted bool, adapters protocol.AdapterSet, target *url.URL) (bool, protocol.AdapterSet) {
	if !encrypted && !adapters.Contains(protocol.KindEncrypted) {
		return false, adapters
	}
	if c.Scheme() == featureflags.Production || !c.reader.App().ProxyEncryptionBypass() {
		return encrypted, adapters
	}
	if !c.proxyDetected(target) {
		return encrypted, adapters
	}

	c.logger.Warn("debugging proxy on port %d detected, sending %s without encryption",
		config.MockServerProxyPort, target.Redacted())
	return false, adapters.Without(protocol.KindEncrypted)
}

func (c *Client) proxyDetected(target *url.URL) bool {
	proxy, err := c.proxy(&http.Request{URL: target})
	if err != nil || proxy == nil {
		return false
	}
	return proxy.Port() == strconv.Itoa(config.MockServerProxyPort)
}
