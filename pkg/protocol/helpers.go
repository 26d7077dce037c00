package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewReadyMessage creates a ready message
func NewReadyMessage(url string) (*Message, error) {
	return NewMessage(TypeReady, ReadyData{URL: url})
}

// NewURLChangedMessage creates a url_changed message
func NewURLChangedMessage(url string) (*Message, error) {
	return NewMessage(TypeURLChanged, URLChangedData{URL: url})
}

// NewWebActionMessage creates a web_action message
func NewWebActionMessage(action string, data map[string]interface{}) (*Message, error) {
	return NewMessage(TypeWebAction, WebActionData{Action: action, Data: data})
}

// NewNavigateMessage creates a navigate message
func NewNavigateMessage(url string) (*Message, error) {
	return NewMessage(TypeNavigate, NavigateData{URL: url})
}

// NewReloadMessage creates a reload message
func NewReloadMessage() (*Message, error) {
	return NewMessage(TypeReload, nil)
}

// NewAnalysisMessage wraps an analysis result
func NewAnalysisMessage(analysis interface{}) (*Message, error) {
	return NewMessage(TypeAnalysis, analysis)
}

// NewAlertMessage creates an alert message
func NewAlertMessage(title, message string) (*Message, error) {
	return NewMessage(TypeAlert, AlertData{Title: title, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetReadyData extracts ready data from a message
func (m *Message) GetReadyData() (*ReadyData, error) {
	var data ReadyData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetURLChangedData extracts url_changed data from a message
func (m *Message) GetURLChangedData() (*URLChangedData, error) {
	var data URLChangedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetWebActionData extracts web_action data from a message
func (m *Message) GetWebActionData() (*WebActionData, error) {
	var data WebActionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetNavigateData extracts navigate data from a message
func (m *Message) GetNavigateData() (*NavigateData, error) {
	var data NavigateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAlertData extracts alert data from a message
func (m *Message) GetAlertData() (*AlertData, error) {
	var data AlertData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
