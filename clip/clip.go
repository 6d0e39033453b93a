// Package clip copies translation results to the system clipboard.
package clip

import (
	cb "github.com/atotto/clipboard"
)

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// CopyResult copies a rendered result as two lines, English first.
func CopyResult(english, isl string) error {
	return cb.WriteAll(english + "\n" + isl)
}
