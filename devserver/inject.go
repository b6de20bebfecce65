package devserver

import (
	"bytes"
	_ "embed"
)

const (
	clientPath = "/__sitepipe/client.js"
	wsPath     = "/__sitepipe/ws"
)

//go:embed client.js
var clientJS []byte

var clientSnippet = []byte(`<script async src="` + clientPath + `"></script>`)

// InjectClient inserts the reload client before the closing body tag, or
// appends it when the page has none.
func InjectClient(page []byte) []byte {
	out := make([]byte, 0, len(page)+len(clientSnippet))
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		out = append(out, page...)
		return append(out, clientSnippet...)
	}
	out = append(out, page[:i]...)
	out = append(out, clientSnippet...)
	return append(out, page[i:]...)
}
