package hub

// Kind selects the websocket frame a Message is written as.
type Kind int

const (
	// KindText carries encoded JSON
	KindText Kind = iota
	// KindBinary carries raw bytes, such as a normalized selfie JPEG
	KindBinary
)

// Message is one broadcast frame
type Message struct {
	Kind Kind
	Data []byte
}

// Text wraps pre-encoded JSON
func Text(data []byte) Message {
	return Message{Kind: KindText, Data: data}
}

// Binary wraps raw bytes
func Binary(data []byte) Message {
	return Message{Kind: KindBinary, Data: data}
}

