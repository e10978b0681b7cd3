package eval

import (
	"bytes"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// evalXPathOnDoc parses doc as XML and evaluates expr, passed through
// opaquely to antchfx/xpath per spec.md §4.5: the core only depends on
// "execute an expression against a document and yield a Value" (spec.md
// §9 design note).
func evalXPathOnDoc(doc []byte, expr string, sp ast.Span) (value.Value, error) {
	root, err := xmlquery.Parse(bytes.NewReader(doc))
	if err != nil {
		return value.Null, errf(ErrQueryInvalidInput, sp, "invalid XML document")
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return value.Null, errf(ErrInvalidRegex, sp, err.Error())
	}
	result := compiled.Evaluate(xmlquery.CreateXPathNavigator(root))
	switch r := result.(type) {
	case *xpath.NodeIterator:
		var nodes []*xmlquery.Node
		for r.MoveNext() {
			n, ok := r.Current().(*xmlquery.NodeNavigator)
			if !ok {
				continue
			}
			nodes = append(nodes, n.Current())
		}
		if len(nodes) == 1 {
			return value.String(nodes[0].InnerText()), nil
		}
		return value.NodesetValue(value.Nodeset{Size: len(nodes), Handle: nodes}), nil
	case string:
		return value.String(r), nil
	case bool:
		return value.Bool(r), nil
	case float64:
		if r == float64(int64(r)) {
			return value.Integer(int64(r)), nil
		}
		return value.Float(r), nil
	default:
		return value.String(strconv.Quote(formatUnknown(result))), nil
	}
}

func formatUnknown(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
