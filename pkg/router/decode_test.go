package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNotification(t *testing.T) {
	d := NewDecoder(testBase)

	tests := []struct {
		name    string
		n       Notification
		want    Target
		wantErr error
	}{
		{
			name: "relative url",
			n:    Notification{Data: map[string]any{"type": "url", "url": "/calendar"}},
			want: URLTarget{URL: testBase + "/calendar"},
		},
		{
			name: "relative url without slash",
			n:    Notification{Data: map[string]any{"type": "url", "url": "journal?day=3"}},
			want: URLTarget{URL: testBase + "/journal?day=3"},
		},
		{
			name: "surrounding whitespace trimmed",
			n:    Notification{Data: map[string]any{"type": "url", "url": " /calendar "}},
			want: URLTarget{URL: testBase + "/calendar"},
		},
		{
			name: "absolute url kept",
			n:    Notification{Data: map[string]any{"type": "url", "url": "https://example.com/promo"}},
			want: URLTarget{URL: "https://example.com/promo"},
		},
		{
			name: "request content data preferred",
			n: Notification{
				Data: map[string]any{"type": "url", "url": "/ignored"},
				Request: &NotificationRequest{Content: NotificationContent{
					Data: map[string]any{"type": "url", "url": "/mood"},
				}},
			},
			want: URLTarget{URL: testBase + "/mood"},
		},
		{
			name: "native action",
			n:    Notification{Data: map[string]any{"type": "nativeAction", "action": "refresh", "x": 1.0}},
			want: ActionTarget{Name: "refresh", Data: map[string]any{"type": "nativeAction", "action": "refresh", "x": 1.0}},
		},
		{
			name:    "url missing",
			n:       Notification{Data: map[string]any{"type": "url"}},
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "url blank",
			n:       Notification{Data: map[string]any{"type": "url", "url": "  "}},
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "url wrong type",
			n:       Notification{Data: map[string]any{"type": "url", "url": 12.0}},
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "action missing",
			n:       Notification{Data: map[string]any{"type": "nativeAction"}},
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "unknown type",
			n:       Notification{Data: map[string]any{"type": "promo"}},
			wantErr: ErrUnknownType,
		},
		{
			name:    "no data",
			n:       Notification{},
			wantErr: ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.DecodeNotification(tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNotificationDisabled(t *testing.T) {
	d := Decoder{BaseURL: testBase}
	_, err := d.DecodeNotification(Notification{Data: map[string]any{"type": "url", "url": "/x"}})
	assert.ErrorIs(t, err, ErrNativeDisabled)
}

func TestParseDeepLink(t *testing.T) {
	tests := []struct {
		raw        string
		wantScheme string
		wantHost   string
		wantPath   string
	}{
		{"feelith://calendar", "feelith", "calendar", "calendar"},
		{"feelith://calendar/2024/05", "feelith", "calendar", "calendar/2024/05"},
		{"feelith:///journal", "feelith", "", "journal"},
		{"feelith://", "feelith", "", ""},
		{"feelith:settings", "feelith", "", "settings"},
		{"https://feelith.com/mood/today", "https", "feelith.com", "mood/today"},
		{"https://feelith.com", "https", "feelith.com", ""},
		{"exp://192.168.1.4:8081/--/calendar", "exp", "192.168.1.4:8081", "calendar"},
		{"exp://192.168.1.4:8081", "exp", "192.168.1.4:8081", ""},
		{"  FEELITH://stats  ", "feelith", "stats", "stats"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			link, err := ParseDeepLink(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, link.Scheme)
			assert.Equal(t, tt.wantHost, link.Host)
			assert.Equal(t, tt.wantPath, link.Path)
		})
	}
}

func TestParseDeepLinkQuery(t *testing.T) {
	link, err := ParseDeepLink("feelith://journal?entry=7&mode=edit")
	require.NoError(t, err)
	assert.Equal(t, "journal", link.Path)
	assert.Equal(t, "7", link.Query.Get("entry"))
	assert.Equal(t, "edit", link.Query.Get("mode"))
}

func TestParseDeepLinkInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "calendar", "/calendar", "://nope", "feelith://bad host%zz"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDeepLink(raw)
			assert.ErrorIs(t, err, ErrInvalidDeepLink)
		})
	}
}

func TestDecodeDeepLink(t *testing.T) {
	d := NewDecoder(testBase + "/")

	tests := []struct {
		raw  string
		want string
	}{
		{"feelith://calendar", testBase + "/calendar"},
		{"feelith://", testBase},
		{"https://feelith.com/", testBase},
		{"https://feelith.com/mood?x=1", testBase + "/mood"},
		{"exp://localhost:8081/--/stats/week", testBase + "/stats/week"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := d.DecodeDeepLink(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, URLTarget{URL: tt.want}, got)
		})
	}
}

func TestWebURL(t *testing.T) {
	d := NewDecoder(testBase)
	assert.Equal(t, testBase, d.WebURL(""))
	assert.Equal(t, testBase, d.WebURL("/"))
	assert.Equal(t, testBase+"/a/b", d.WebURL("a/b"))
	assert.Equal(t, testBase+"/a/b", d.WebURL("/a/b"))
}

func TestTargetKinds(t *testing.T) {
	var u Target = URLTarget{URL: "x"}
	var a Target = ActionTarget{Name: "refresh"}
	assert.Equal(t, KindURL, u.Kind())
	assert.Equal(t, KindNativeAction, a.Kind())
	assert.Equal(t, "url:x", u.String())
	assert.Equal(t, "action:refresh", a.String())
}
