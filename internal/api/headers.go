package api

import (
	"github.com/google/uuid"

	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/secure"
	"github.com/systmms/commonspack/pkg/protocol"
)

// Headers returns the base headers sent with every request. With auth the
// Authorization header is added when a token is stored.
func (c *Client) Headers(auth bool) map[string]string {
	headers := map[string]string{
		protocol.HeaderReferenceService: config.ReferenceService,
		protocol.HeaderApplicationID:    c.applicationID(),
		protocol.HeaderChannel:          config.DefaultChannel,
		protocol.HeaderConnection:       config.ConnectionHeaderValue,
	}
	if !auth {
		return headers
	}
	if bearer, ok := c.bearer(); ok {
		headers[protocol.HeaderAuthorization] = bearer
	}
	return headers
}

// HeadersWithDeviceID returns the authenticated headers plus DeviceId and
// Tracking-Id.
func (c *Client) HeadersWithDeviceID() map[string]string {
	headers := c.Headers(true)
	id := c.DeviceID()
	headers[protocol.HeaderDeviceID] = id
	headers[protocol.HeaderTrackingID] = id
	return headers
}

// HeadersWithChannel returns the authenticated headers with the configured
// channel id.
func (c *Client) HeadersWithChannel() map[string]string {
	headers := c.Headers(true)
	headers[protocol.HeaderChannel] = c.channelID()
	return headers
}

// HeadersWithDomain returns the authenticated headers with the configured
// channel id and the domain tracker set to name.
func (c *Client) HeadersWithDomain(name string) map[string]string {
	headers := c.HeadersWithChannel()
	headers[protocol.HeaderDomainTracker] = name
	return headers
}

func (c *Client) applicationID() string {
	return config.ApplicationIDPrefix + c.reader.AppVersion() + "(" + c.reader.BundleVersion() + ")"
}

func (c *Client) channelID() string {
	if id := c.reader.App().ChannelID(); id != "" {
		return id
	}
	return config.DefaultChannel
}

// token returns the stored token sealed in an enclave. The request pipeline
// hands it to protocol.Request.Credential so it is opened only while the
// outgoing request is built.
func (c *Client) token() (*secure.SecureBuffer, bool) {
	if c.storage == nil {
		return nil, false
	}
	return c.storage.RetrieveSecret(config.TokenKey)
}

// bearer renders the stored token as an Authorization value for callers of
// the Headers helpers, which hand headers out as plain strings.
func (c *Client) bearer() (string, bool) {
	buf, ok := c.token()
	if !ok {
		return "", false
	}
	defer buf.Destroy()

	var value string
	err := buf.WithBytes(func(token []byte) error {
		value = config.Bearer + " " + string(token)
		return nil
	})
	if err != nil {
		c.logger.Warn("stored token could not be opened: %v", err)
		return "", false
	}
	return value, true
}

// DeviceID returns the identifier of this installation. It is generated on
// first use and kept in secure storage under config.DeviceIDKey.
func (c *Client) DeviceID() string {
	c.deviceMu.Lock()
	defer c.deviceMu.Unlock()

	if c.deviceID != "" {
		return c.deviceID
	}

	if c.storage != nil {
		if id, ok := c.storage.Retrieve(config.DeviceIDKey); ok && id != "" {
			c.deviceID = id
			return id
		}
	}

	id := uuid.NewString()
	if c.storage != nil {
		if err := c.storage.Set(config.DeviceIDKey, id); err != nil {
			c.logger.Warn("device id not persisted: %v", err)
		}
	}
	c.deviceID = id
	return id
}
