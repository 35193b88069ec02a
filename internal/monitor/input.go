package monitor

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Command is a single keyboard action delivered to the refresh loop.
type Command int

const (
	CmdStop Command = iota
	CmdForceRefresh
	CmdToggleNewsCount
)

// ListenKeys reads single keystrokes from r and forwards commands until the
// quit key or EOF. It is run as a goroutine against raw-mode stdin.
func ListenKeys(r io.Reader, cmds chan<- Command) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		switch buf[0] {
		case 'q', 'Q', 3: // ctrl-c arrives as a byte in raw mode
			cmds <- CmdStop
			return
		case 'w', 'W':
			cmds <- CmdForceRefresh
		case 'm', 'M':
			cmds <- CmdToggleNewsCount
		}
	}
}

// RawMode switches stdin to raw mode so single keystrokes arrive without a
// newline. The returned function restores the previous state. A non-terminal
// stdin is a no-op, which keeps piped runs working.
func RawMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
