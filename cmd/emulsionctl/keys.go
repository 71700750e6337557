package main

type keyPress int

const (
	keyNone keyPress = iota
	keyUp
	keyDown
	keyLeft
	keyRight
	keySpace
	keyEnter
	keyEscape
	keyQuit
	keyRefresh
)

// decodeKey maps one read from a raw-mode terminal to a key. Arrow keys
// arrive as ESC [ A..D (or ESC O A..D in application mode).
func decodeKey(b []byte) keyPress {
	if len(b) == 0 {
		return keyNone
	}
	if len(b) >= 3 && b[0] == 0x1b && (b[1] == '[' || b[1] == 'O') {
		switch b[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		case 'C':
			return keyRight
		case 'D':
			return keyLeft
		}
		return keyNone
	}
	switch b[0] {
	case 0x1b:
		return keyEscape
	case ' ':
		return keySpace
	case '\r', '\n':
		return keyEnter
	case 'q', 0x03, 0x04:
		return keyQuit
	case 'r':
		return keyRefresh
	case 'h':
		return keyLeft
	case 'j':
		return keyDown
	case 'k':
		return keyUp
	case 'l':
		return keyRight
	}
	return keyNone
}
