package htmlutil

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// asciiSpace is trimmed from cell text, the full-width space (U+3000) is
// deliberately not part of it since it separates fields in listing cells.
const asciiSpace = " \t\r\n"

// CellText returns the concatenated text of a node with surrounding ascii
// whitespace removed.
func CellText(node *html.Node) string {
	return strings.Trim(GetText(node), asciiSpace)
}

// CellTexts returns CellText for every node in the selection, in document order.
func CellTexts(sel *goquery.Selection) []string {
	out := make([]string, len(sel.Nodes))
	for i, n := range sel.Nodes {
		out[i] = CellText(n)
	}
	return out
}

// ParseDocument decodes `body` to utf-8 according to the given Content-Type
// header (falling back to <meta charset> sniffing) and parses it.
func ParseDocument(body []byte, contentType string) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(reader)
}

// ParseReader parses an already utf-8 encoded document.
func ParseReader(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}
