package config

import (
	"strings"
	"time"
)

// Api is a typed view over the Api section
type Api struct {
	r *Reader
}

// Api returns the Api section view
func (r *Reader) Api() Api {
	return Api{r: r}
}

// Host returns Api.host
func (a Api) Host() string {
	return a.r.String("Api", "host")
}

// Scheme returns Api.scheme, e.g. "https://"
func (a Api) Scheme() string {
	return a.r.String("Api", "scheme")
}

// BaseURL returns the scheme followed by the host
func (a Api) BaseURL() string {
	return a.Scheme() + a.Host()
}

// BasePath returns Api.basePath
func (a Api) BasePath() string {
	return a.r.String("Api", "basePath")
}

// Timeout returns Api.timeout in seconds as a duration
func (a Api) Timeout() time.Duration {
	return a.r.Duration("Api", "timeout")
}

// TrimBaseURL strips the base URL from url, leaving the path
func (a Api) TrimBaseURL(url string) string {
	base := a.BaseURL()
	if base == "" {
		return url
	}
	return strings.ReplaceAll(url, base, "")
}

// App is a typed view over the App section
type App struct {
	r *Reader
}

// App returns the App section view
func (r *Reader) App() App {
	return App{r: r}
}

// Timeout returns App.timeout
func (a App) Timeout() time.Duration {
	return a.r.Duration("App", "timeout")
}

// Stubs reports whether stubbed responses are requested
func (a App) Stubs() bool {
	return a.r.Bool("App", "stubs")
}

// Locale returns App.locale
func (a App) Locale() string {
	return a.r.String("App", "locale")
}

// Timezone returns App.timezone
func (a App) Timezone() string {
	return a.r.String("App", "timezone")
}

// ChannelID returns App.CHANNEL_ID
func (a App) ChannelID() string {
	return a.r.String("App", "CHANNEL_ID")
}

// ProxyEncryptionBypass reports whether encryption may be switched off when
// a local debugging proxy is detected. Absent means allowed.
func (a App) ProxyEncryptionBypass() bool {
	v, ok := a.r.Value("App", "ProxyEncryptionBypass")
	if !ok {
		return true
	}
	b, isBool := v.(bool)
	return !isBool || b
}
