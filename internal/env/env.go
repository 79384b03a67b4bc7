// Package env fills config structs from environment variables.
//
// Fields opt in with an env tag naming the variable. A default tag supplies
// the value when the variable is unset; a variable set to "" is kept as is.
// Nested and embedded structs are walked recursively, and any struct that
// implements Validator is validated once its own fields are loaded.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validator is implemented by config structs that check themselves after loading.
type Validator interface {
	Validate() error
}

// ErrInvalidValue reports a variable whose value could not be decoded into its field.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("%s=%q cannot be decoded into %s: %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error { return e.Err }

// ErrNotStructPointer is returned when Load is not given a *struct.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return "env: Load needs a pointer to a struct, got " + e.Type
}

// ErrUnsupportedType is returned for a tagged field no decoder handles.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return "env: no decoder for " + e.Kind
}

type decoder func(field reflect.Value, raw string) error

// Types matched before falling back to the field's kind.
var typeDecoders = map[reflect.Type]decoder{
	reflect.TypeFor[time.Duration](): func(f reflect.Value, raw string) error {
		d, err := time.ParseDuration(raw)
		if err == nil {
			f.SetInt(int64(d))
		}
		return err
	},
	reflect.TypeFor[[]string](): func(f reflect.Value, raw string) error {
		f.Set(reflect.ValueOf(splitList(raw)))
		return nil
	},
}

var timeType = reflect.TypeFor[time.Time]()

// Load decodes environment variables into v, which must be a pointer to a
// struct. Supported field types are string, bool, the sized and unsized int,
// uint and float kinds, time.Duration and []string (comma separated, blank
// entries dropped).
func Load(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return load(rv.Elem())
}

func load(s reflect.Value) error {
	for i := range s.NumField() {
		sf := s.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		field := s.Field(i)

		if sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := load(field); err != nil {
				return err
			}
			continue
		}

		name, ok := sf.Tag.Lookup("env")
		if !ok || name == "" {
			continue
		}
		raw, set := os.LookupEnv(name)
		if !set {
			if raw, set = sf.Tag.Lookup("default"); !set {
				continue
			}
		}
		if err := decode(field, raw); err != nil {
			return ErrInvalidValue{Field: sf.Name, EnvVar: name, Value: raw, Err: err}
		}
	}

	if v, ok := s.Addr().Interface().(Validator); ok {
		return v.Validate()
	}
	return nil
}

func decode(field reflect.Value, raw string) error {
	if dec, ok := typeDecoders[field.Type()]; ok {
		return dec(field, raw)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	default:
		return ErrUnsupportedType{Kind: field.Type().String()}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
