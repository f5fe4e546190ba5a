package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Strings is a []string that mapstructure can deserialize from a single comma-separated string
// (as set from the environment) or from a list of strings.
type Strings []string

var (
	stringsType     = reflect.TypeOf(Strings{})
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string{})
)

// DecodeStrings is a mapstructure.DecodeHookFuncValue that decodes a single string value or a
// slice of strings into Strings.
func DecodeStrings(fromValue reflect.Value, toValue reflect.Value) (interface{}, error) {
	if toValue.Type() != stringsType {
		return fromValue.Interface(), nil
	}
	switch fromValue.Type() {
	case stringSliceType:
		return Strings(fromValue.Interface().([]string)), nil
	case stringType:
		if fromValue.String() == "" {
			return Strings{}, nil
		}
		return Strings(strings.Split(fromValue.String(), ",")), nil
	}
	return fromValue.Interface(), nil
}

// OnlyString is a string that can deserialize only from a string.  Device ids are digit strings
// that may carry leading zeros; reading them as numbers from YAML would silently drop those.
type OnlyString string

var (
	onlyStringType  = reflect.TypeOf(OnlyString(""))
	ErrMustBeString = errors.New("must be a string")
)

func (o OnlyString) String() string {
	return string(o)
}

// DecodeOnlyString is a mapstructure.DecodeHookFuncValue that decodes a string value as an
// OnlyString and fails on all other values.
func DecodeOnlyString(fromValue reflect.Value, toValue reflect.Value) (interface{}, error) {
	if toValue.Type() != onlyStringType {
		return fromValue.Interface(), nil
	}
	if fromValue.Type() != stringType {
		return nil, fmt.Errorf("%w, not a %s", ErrMustBeString, fromValue.Type().String())
	}
	return OnlyString(fromValue.String()), nil
}

const keySeparator = "."

// GetStructKeys returns the dotted keys of every leaf field of typ, named from tag when present
// and from the field name otherwise.  A tag value ending in ","+squashValue folds the embedded
// struct's fields into the parent, as mapstructure does.  Pointers are followed; maps are leaves.
func GetStructKeys(typ reflect.Type, tag, squashValue string) []string {
	return collectKeys(typ, tag, ","+squashValue, nil, nil)
}

func collectKeys(typ reflect.Type, tag, squashSuffix string, prefix, keys []string) []string {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return append(keys, strings.Join(prefix, keySeparator))
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, tagged := field.Tag.Lookup(tag)
		if !tagged {
			name = field.Name
		}
		path := append([]string(nil), prefix...)
		if squash := tagged && strings.HasSuffix(name, squashSuffix); !squash {
			path = append(path, name)
		}
		keys = collectKeys(field.Type, tag, squashSuffix, path, keys)
	}
	return keys
}
