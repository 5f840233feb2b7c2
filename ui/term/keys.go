package term

import (
	"unicode/utf8"
)

// Key identifies a decoded key press.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // printable rune, see KeyEvent.Rune
	KeyEnter
	KeyTab
	KeyBackTab
	KeyUp
	KeyDown
	KeyPgUp
	KeyPgDn
	KeyEsc
	KeyBackspace
	KeyDel
	KeyCtrl // control character, see KeyEvent.Rune
)

// KeyEvent is one key press read from the terminal.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// Name returns a readable name for k, such as "Enter", "Ctrl+C" or
// "q".
func (k KeyEvent) Name() string {
	switch k.Key {
	case KeyRune:
		return string(k.Rune)
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackTab:
		return "Shift+Tab"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyPgUp:
		return "PgUp"
	case KeyPgDn:
		return "PgDn"
	case KeyEsc:
		return "Esc"
	case KeyBackspace:
		return "Backspace"
	case KeyDel:
		return "Del"
	case KeyCtrl:
		return "Ctrl+" + string('A'+k.Rune-1)
	}
	return ""
}

// CSI sequences recognized after ESC [.
var csiKeys = map[string]Key{
	"A":  KeyUp,
	"B":  KeyDown,
	"Z":  KeyBackTab,
	"5~": KeyPgUp,
	"6~": KeyPgDn,
}

// DecodeKeys splits a chunk of raw terminal input into key presses.
// Unknown escape sequences are dropped.
func DecodeKeys(b []byte) []KeyEvent {
	var out []KeyEvent
	for len(b) > 0 {
		c := b[0]
		switch {
		case c == 0x1b:
			k, n := decodeEscape(b)
			if k != KeyNone {
				out = append(out, KeyEvent{Key: k})
			}
			b = b[n:]
			continue
		case c == '\r' || c == '\n':
			out = append(out, KeyEvent{Key: KeyEnter})
		case c == '\t':
			out = append(out, KeyEvent{Key: KeyTab})
		case c == 0x7f:
			out = append(out, KeyEvent{Key: KeyDel})
		case c == 0x08:
			out = append(out, KeyEvent{Key: KeyBackspace})
		case c >= 1 && c <= 26:
			out = append(out, KeyEvent{Key: KeyCtrl, Rune: rune(c)})
		case c < 0x20:
		default:
			r, n := utf8.DecodeRune(b)
			if r != utf8.RuneError {
				out = append(out, KeyEvent{Key: KeyRune, Rune: r})
			}
			b = b[n:]
			continue
		}
		b = b[1:]
	}
	return out
}

// decodeEscape decodes the sequence at the start of b, which begins
// with ESC, and returns the key and the number of bytes used.
func decodeEscape(b []byte) (Key, int) {
	if len(b) < 2 || b[1] != '[' {
		return KeyEsc, 1
	}
	// Parameters and intermediates run up to a final byte in 0x40-0x7e.
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			return csiKeys[string(b[2:i+1])], i + 1
		}
	}
	return KeyNone, len(b)
}
