// File: models/flag.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Flag is a yes/no answer on a feedback record. The feedback form stores
// these as "Yes"/"No" strings while newer writers store booleans; both decode.
// It is always written back as a boolean.
type Flag bool

// ParseFlag converts a stored answer into a Flag. Nil is false.
func ParseFlag(v any) (Flag, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return Flag(t), nil
	case Flag:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "true", "y":
			return true, nil
		case "no", "false", "n", "":
			return false, nil
		}
		return false, fmt.Errorf("unrecognised yes/no answer %q", t)
	}
	return false, fmt.Errorf("unsupported yes/no answer of type %T", v)
}

func (f *Flag) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	var v any
	switch t {
	case bsontype.Boolean:
		v = raw.Boolean()
	case bsontype.String:
		v = raw.StringValue()
	case bsontype.Null, bsontype.Undefined:
		v = nil
	default:
		return fmt.Errorf("cannot decode %s into a yes/no answer", t)
	}
	parsed, err := ParseFlag(v)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseFlag(v)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
