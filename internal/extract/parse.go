package extract

import (
	"io"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Parse loads a whole XML document into memory. A document that cannot be
// parsed, or that has no root element, is an input error.
func Parse(r io.Reader) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeInput, "parse XML").WithCause(err)
	}
	if !hasElement(doc) {
		return nil, schema.NewError(schema.ErrCodeInput, "document has no root element")
	}
	return doc, nil
}

// ParseFile opens and parses the document at path.
func ParseFile(path string) (*xmlquery.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeInput, "open source %s", path).WithCause(err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		if ge, ok := err.(*schema.GraphError); ok {
			ge.Details = map[string]any{"path": path}
		}
		return nil, err
	}
	return doc, nil
}

func hasElement(doc *xmlquery.Node) bool {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}
