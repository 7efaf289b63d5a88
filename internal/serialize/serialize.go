// Package serialize converts Go resource structs into the map form used
// in a CloudFormation Resources section.
package serialize

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Properties serializes a resource struct into a property map.
// Zero-valued fields are dropped, json tags supply the CloudFormation
// property names, and values implementing json.Marshaler (intrinsics,
// AttrRef, Parameter) serialize through their own marshaling.
func Properties(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	props := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "-" {
			continue
		}

		if isZero(fieldVal) {
			continue
		}

		encoded, err := encode(fieldVal)
		if err != nil {
			return nil, err
		}

		if encoded != nil {
			props[name] = encoded
		}
	}

	return props, nil
}

// fieldName returns the CloudFormation property name for a struct field,
// preferring the json tag. This is how Type_ maps to "Type".
func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	name := strings.Split(tag, ",")[0]
	if name == "" {
		return field.Name
	}
	return name
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		// AttrRef reports zero through IsZero so unset refs are dropped.
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

// encode converts a field value into a JSON-compatible value.
func encode(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		return encode(v.Elem())
	}

	// Intrinsic types carry their own wire shape.
	if v.CanInterface() {
		if marshaler, ok := v.Interface().(json.Marshaler); ok {
			data, err := marshaler.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var out any
			if err := json.Unmarshal(data, &out); err != nil {
				return nil, err
			}
			return out, nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return Properties(v.Interface())

	case reflect.Slice:
		if v.Len() == 0 {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := encode(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		out := make(map[string]any)
		iter := v.MapRange()
		for iter.Next() {
			val, err := encode(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = val
		}
		return out, nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
