package order

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
)

// ParseJSON decodes the order_data string of a generate request.
// Numbers are kept as json.Number so that long order numbers survive untouched.
func ParseJSON(data string) (map[string]any, error) {
	if strings.TrimSpace(data) == "" {
		return nil, errors.New("order data is empty")
	}

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "order data is not valid JSON")
	}
	if dec.More() {
		return nil, errors.New("order data contains trailing content after the JSON object")
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.Errorf("order data must be a JSON object, got %s", describe(payload))
	}
	return obj, nil
}

// Decode converts a raw payload into an Input. The returned error explains
// which field had the wrong shape.
func Decode(raw map[string]any) (*Input, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "encode order data")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	in := &Input{}
	if err := dec.Decode(in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stdErrors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, errors.Errorf("field %q has the wrong type: expected %s, got %s",
				typeErr.Field, typeErr.Type.String(), typeErr.Value)
		}
		return nil, errors.Wrap(err, "decode order data")
	}

	in.Raw = raw
	return in, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
