package export

import "github.com/atotto/clipboard"

// SystemClipboard writes to the OS clipboard (xclip/xsel/wl-copy on Linux).
type SystemClipboard struct{}

// WriteText implements Clipboard.
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Supported reports whether a clipboard backend is available.
func (SystemClipboard) Supported() bool {
	return !clipboard.Unsupported
}
