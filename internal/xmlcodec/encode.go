package xmlcodec

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/beevik/etree"
	ierr "github.com/flexprice/recurly-client/internal/errors"
)

type undefined struct{}

// Undefined encodes as an empty element with an explicit end tag, <name></name>.
// A nil value encodes as a closed element, <name/>.
var Undefined = undefined{}

// Field is one named value in an outgoing document. Order is preserved.
// A Value of []Field nests child elements, so repeated children are
// expressed by repeating a Field name inside the slice.
type Field struct {
	Name  string
	Value any
}

// Encode renders fields under a root element named root
func Encode(root string, fields []Field) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	el := doc.CreateElement(root)
	if len(fields) == 0 {
		el.CreateText("")
	}
	if err := appendFields(el, fields); err != nil {
		return nil, err
	}

	return doc.WriteToBytes()
}

func appendFields(parent *etree.Element, fields []Field) error {
	for _, f := range fields {
		child := parent.CreateElement(f.Name)
		if err := setValue(child, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func setValue(el *etree.Element, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case undefined:
		el.CreateText("")
		return nil
	case []Field:
		if len(v) == 0 {
			el.CreateText("")
			return nil
		}
		return appendFields(el, v)
	case string:
		el.CreateText(v)
	case bool:
		el.CreateText(strconv.FormatBool(v))
	case int:
		el.CreateText(strconv.Itoa(v))
	case int64:
		el.CreateText(strconv.FormatInt(v, 10))
	case float64:
		el.CreateText(strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		el.CreateText(v.UTC().Format(time.RFC3339))
	case fmt.Stringer:
		el.CreateText(v.String())
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil
			}
			return setValue(el, rv.Elem().Interface())
		}
		if rv.Kind() == reflect.String {
			el.CreateText(rv.String())
			return nil
		}
		return ierr.NewErrorf("cannot encode %T as XML", value).
			WithHintf("Unsupported value for element %s", el.Tag).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
