package audio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrSelectionCancelled is returned when the user backs out of the picker.
var ErrSelectionCancelled = errors.New("device selection cancelled")

// SelectDevice presents an interactive microphone picker. The first entry
// keeps the system default, reported as a nil DeviceInfo. With no devices
// to choose from it returns the default without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, nil
	}

	rows := make([]string, 0, len(devices)+1)
	rows = append(rows, "system default")
	for _, d := range devices {
		label := d.Name
		if IsBluetooth(d.Name) {
			label += " \x1b[33m[⚠ Lower audio quality]\x1b[0m"
		}
		rows = append(rows, label)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	draw := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select microphone (↑/↓ or j/k, Enter to confirm, q to cancel):\r\n\r\n")
		for i, row := range rows {
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", row)
			} else {
				fmt.Printf("    %s\r\n", row)
			}
		}
	}
	draw()

	pick := func() *DeviceInfo {
		if cursor == 0 {
			return nil
		}
		return &devices[cursor-1]
	}

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch {
		case n == 1 && buf[0] == '\r':
			fmt.Print("\r\n")
			return pick(), nil
		case n == 1 && (buf[0] == 'q' || buf[0] == 3): // q or Ctrl+C
			fmt.Print("\r\n")
			return nil, ErrSelectionCancelled
		case n == 1 && buf[0] == 'j':
			if cursor < len(rows)-1 {
				cursor++
			}
		case n == 1 && buf[0] == 'k':
			if cursor > 0 {
				cursor--
			}
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A':
			if cursor > 0 {
				cursor--
			}
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B':
			if cursor < len(rows)-1 {
				cursor++
			}
		}

		fmt.Printf("\x1b[%dA", len(rows)+2)
		draw()
	}
}
