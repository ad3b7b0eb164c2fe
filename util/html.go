package util

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// StripTags reduces an HTML fragment to its text content. Tags are dropped,
// text is kept as-is.
func StripTags(input string) string {

	tokenizer := html.NewTokenizerFragment(strings.NewReader(input), "body")
	tokenizer.SetMaxBuf(4096) // roughly the maximum number of bytes tokenized

	var text = &bytes.Buffer{}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}
		if tt == html.TextToken {
			text.Write(tokenizer.Text())
		}
	}

	return text.String()
}
