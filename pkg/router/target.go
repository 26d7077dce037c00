package router

import "fmt"

// Kind discriminates navigation targets.
type Kind string

const (
	KindURL          Kind = "url"
	KindNativeAction Kind = "nativeAction"
)

// Target is a decoded navigation instruction. It is a closed sum type:
// the only implementations are URLTarget and ActionTarget.
type Target interface {
	Kind() Kind
	fmt.Stringer
	isTarget()
}

// URLTarget navigates the content view to an absolute URL.
type URLTarget struct {
	URL string `json:"url"`
}

func (URLTarget) Kind() Kind       { return KindURL }
func (t URLTarget) String() string { return "url:" + t.URL }
func (URLTarget) isTarget()        {}

// ActionTarget runs a named native action with the notification data.
type ActionTarget struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

func (ActionTarget) Kind() Kind       { return KindNativeAction }
func (t ActionTarget) String() string { return "action:" + t.Name }
func (ActionTarget) isTarget()        {}
