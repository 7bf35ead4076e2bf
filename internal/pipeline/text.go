package pipeline

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line in extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
	"header": true, "footer": true, "title": true,
}

// isHTML decides whether a document should have its markup stripped
func isHTML(contentType, name string) bool {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediaType == "text/html" || mediaType == "application/xhtml+xml"
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// ExtractText returns the visible text of an HTML document. Script, style,
// noscript and iframe contents are dropped.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var last byte

	write := func(s string) {
		buf.WriteString(s)
		last = s[len(s)-1]
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			if fields := strings.Fields(n.Data); len(fields) > 0 {
				if buf.Len() > 0 && last != '\n' {
					write(" ")
				}
				write(strings.Join(fields, " "))
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] && buf.Len() > 0 && last != '\n' {
			write("\n")
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}
