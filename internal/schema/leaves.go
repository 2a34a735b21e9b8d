package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Leaf is a scalar field of an extracted object, addressed by a dotted and
// indexed path such as "items[2].unit_price.amount".
type Leaf struct {
	Path  string
	Value interface{}
}

// Leaves enumerates the leaf fields of an extracted object in document
// order. Null leaves are skipped: absence is a valid extraction result, not
// a match failure.
func Leaves(doc []byte) ([]Leaf, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var leaves []Leaf
	if err := walkValue(dec, "", &leaves); err != nil {
		return nil, fmt.Errorf("walking extracted object: %w", err)
	}
	return leaves, nil
}

func walkValue(dec *json.Decoder, path string, out *[]Leaf) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		if tok != nil {
			*out = append(*out, Leaf{Path: path, Value: tok})
		}
		return nil
	}

	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("unexpected object key token %v", keyTok)
			}
			child := key
			if path != "" {
				child = path + "." + key
			}
			if err := walkValue(dec, child, out); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			child := fmt.Sprintf("%s[%d]", path, i)
			if err := walkValue(dec, child, out); err != nil {
				return err
			}
		}
	}

	// Consume the closing delimiter.
	_, err = dec.Token()
	return err
}

// Serialize renders a leaf value the way it appears inside the model's JSON
// response text, so evidence matching can locate it verbatim.
func Serialize(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// PathPrefix reports whether path addresses a leaf under prefix, e.g.
// "items[0].total.amount" is under "items" and under "items[0].total".
func PathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '.' || rest[0] == '['
}
