// Package web holds the default homepage compiled into the binary.
package web

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// Index returns a copy of the embedded homepage.
func Index() []byte {
	out := make([]byte, len(indexHTML))
	copy(out, indexHTML)
	return out
}
