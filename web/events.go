package web

// Type is the first byte of every websocket message.
type Type = uint8

const (
	// MsgFrame is sent to clients: the packed 64x32 display, 256 bytes,
	// 8 pixels per byte with the leftmost pixel in the high bit.
	MsgFrame Type = iota

	// MsgKey is sent by clients: [MsgKey, key code, pressed].
	MsgKey

	// MsgClosing is sent by a client that is going away.
	MsgClosing Type = 255
)

// KeyEvent is a key pad change received from a remote client.
type KeyEvent struct {
	Code    uint
	Pressed bool
}
