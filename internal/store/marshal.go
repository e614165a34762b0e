package store

import (
	"fmt"

	"github.com/roach88/tinyql/internal/value"
)

// Document is a stored JSON object and its id.
type Document struct {
	ID   int64
	Body map[string]any
}

// marshalBody normalizes body and encodes it as compact JSON TEXT.
func marshalBody(body any) (string, error) {
	v, err := value.Normalize(body)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	if value.KindOf(v) != value.KindObject {
		return "", fmt.Errorf("marshal body: document must be an object, got %s", value.KindOf(v))
	}
	data, err := value.Encode(v)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	return string(data), nil
}

// unmarshalBody parses JSON TEXT into a document body.
// Numbers come back as json.Number so large integers keep their precision.
func unmarshalBody(data string) (map[string]any, error) {
	v, err := value.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unmarshal body: expected object, got %s", value.KindOf(v))
	}
	return obj, nil
}

func tableName(table string) string {
	if table == "" {
		return DefaultTable
	}
	return table
}
