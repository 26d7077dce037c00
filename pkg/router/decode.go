package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Notification types carried in the payload's "type" field.
const (
	TypeURL          = "url"
	TypeNativeAction = "nativeAction"
)

// Notification is a push notification as delivered by the platform.
// Tapped notifications wrap their data in request.content.data; foreground
// deliveries may carry it at the top level.
type Notification struct {
	Data    map[string]any       `json:"data,omitempty"`
	Request *NotificationRequest `json:"request,omitempty"`
}

// NotificationRequest is the request envelope of a tapped notification.
type NotificationRequest struct {
	Content NotificationContent `json:"content"`
}

// NotificationContent holds the notification's display fields and data.
type NotificationContent struct {
	Title string         `json:"title,omitempty"`
	Body  string         `json:"body,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Payload returns the data map, preferring request.content.data.
func (n Notification) Payload() map[string]any {
	if n.Request != nil && n.Request.Content.Data != nil {
		return n.Request.Content.Data
	}
	if n.Data != nil {
		return n.Data
	}
	return map[string]any{}
}

// Decoder turns notifications and deep links into navigation targets.
type Decoder struct {
	// BaseURL is the web application root, e.g. "https://feelith.com".
	BaseURL string

	// NativeEnabled is the master switch for notification handling.
	NativeEnabled bool

	// DeepLinking enables deep-link decoding.
	DeepLinking bool
}

// NewDecoder returns a decoder with every feature enabled.
func NewDecoder(baseURL string) Decoder {
	return Decoder{BaseURL: baseURL, NativeEnabled: true, DeepLinking: true}
}

// DecodeNotification maps a notification payload to a target.
// Relative URLs are resolved against BaseURL.
func (d Decoder) DecodeNotification(n Notification) (Target, error) {
	if !d.NativeEnabled {
		return nil, ErrNativeDisabled
	}

	data := n.Payload()
	typ, _ := data["type"].(string)

	switch typ {
	case TypeURL:
		u, _ := data["url"].(string)
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, fmt.Errorf("%w: url notification without url", ErrMalformedPayload)
		}
		return URLTarget{URL: d.ResolveURL(u)}, nil

	case TypeNativeAction:
		action, _ := data["action"].(string)
		if action == "" {
			return nil, fmt.Errorf("%w: nativeAction notification without action", ErrMalformedPayload)
		}
		return ActionTarget{Name: action, Data: data}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// DecodeDeepLink maps a deep-link URL to a URL target under BaseURL.
func (d Decoder) DecodeDeepLink(raw string) (Target, error) {
	if !d.DeepLinking {
		return nil, ErrDeepLinkingDisabled
	}

	link, err := ParseDeepLink(raw)
	if err != nil {
		return nil, err
	}
	return URLTarget{URL: d.WebURL(link.Path)}, nil
}

// WebURL joins an in-app path onto BaseURL. An empty path yields the bare
// base URL without a trailing slash.
func (d Decoder) WebURL(path string) string {
	base := strings.TrimSuffix(d.BaseURL, "/")
	clean := strings.TrimPrefix(path, "/")
	if clean == "" {
		return base
	}
	return base + "/" + clean
}

// ResolveURL returns u unchanged when it is absolute, otherwise it is
// treated as a path under BaseURL.
func (d Decoder) ResolveURL(u string) string {
	if parsed, err := url.Parse(u); err == nil && parsed.IsAbs() {
		return u
	}
	return d.WebURL(u)
}

// DeepLink is a parsed deep-link URL.
type DeepLink struct {
	Scheme string     `json:"scheme"`
	Host   string     `json:"host"`
	Path   string     `json:"path"`
	Query  url.Values `json:"query"`
	Raw    string     `json:"url"`
}

// ParseDeepLink splits a deep link into scheme, host, in-app path and query.
//
// For http(s) universal links the path is the URL path. For custom schemes
// (feelith://calendar/2024) the host is the first path segment. Expo
// development links (exp://host:port/--/calendar) keep what follows "--/".
// The returned Path never has a leading slash.
func ParseDeepLink(raw string) (*DeepLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidDeepLink)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeepLink, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidDeepLink, raw)
	}

	link := &DeepLink{
		Scheme: strings.ToLower(u.Scheme),
		Host:   u.Host,
		Query:  u.Query(),
		Raw:    raw,
	}

	switch link.Scheme {
	case "http", "https":
		link.Path = u.Path
	case "exp", "exps":
		if i := strings.Index(u.Path, "/--/"); i >= 0 {
			link.Path = u.Path[i+len("/--/"):]
		}
	default:
		if u.Opaque != "" {
			link.Path = u.Opaque
		} else {
			link.Path = u.Host + u.Path
		}
	}
	link.Path = strings.TrimPrefix(link.Path, "/")

	return link, nil
}
