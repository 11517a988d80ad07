package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
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

// ScriptTexts returns the text contents of every <script> element in the
// document, in document order. Empty scripts (ex. <script src="...">) are skipped.
func ScriptTexts(document string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	var texts []string
	for _, script := range doc.Find("script").Nodes {
		text := GetText(script)
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
