package router

// Built-in native action names.
const (
	ActionRefresh = "refresh"
	ActionAlert   = "alert"
)

func (r *Router) registerBuiltins() {
	r.actions[ActionRefresh] = r.refreshAction
	r.actions[ActionAlert] = r.alertAction
}

// refreshAction reloads the content view, or navigates to the base URL when
// no reload callback is registered.
func (r *Router) refreshAction(map[string]any) error {
	r.mu.Lock()
	navigate, reload := r.navigate, r.reload
	r.mu.Unlock()

	switch {
	case reload != nil:
		reload()
	case navigate != nil:
		base := r.decoder.WebURL("")
		r.SetCurrentURL(base)
		navigate(base)
	default:
		r.logger.Warn("refresh requested with no content view registered")
	}
	return nil
}

// alertAction forwards title and message to the alert hook, if any.
func (r *Router) alertAction(data map[string]any) error {
	if r.alert == nil {
		r.logger.Debug("alert action ignored, no alert hook")
		return nil
	}
	title, _ := data["title"].(string)
	message, _ := data["message"].(string)
	if message == "" {
		message, _ = data["body"].(string)
	}
	r.alert(title, message)
	return nil
}
