package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNotStructPointer is returned when Struct is given anything but a pointer to a struct.
	ErrNotStructPointer = errors.New("sanitizer: must pass a pointer to struct")
	// ErrUnknownRule is returned for a sanitize tag naming an unregistered rule.
	ErrUnknownRule = errors.New("sanitizer: unknown rule")
)

var rules = map[string]func(string) string{
	"trim":        Trim,
	"lower":       strings.ToLower,
	"email":       Email,
	"single_line": SingleLine,
	"text":        Text,
	"no_control":  RemoveControlChars,
	"filename":    Filename,
}

// Struct rewrites the string fields of the struct v points to according to
// their sanitize tags. Rules run left to right; "max:N" truncates to N runes.
// Nested structs and struct pointers are walked; "-" skips a field.
//
//	type Address struct {
//		Name string `sanitize:"single_line,max:100"`
//	}
func Struct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return walk(rv.Elem())
}

func walk(rv reflect.Value) error {
	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		tag := rt.Field(i).Tag.Get("sanitize")
		if !field.CanSet() || tag == "-" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if tag == "" {
				continue
			}
			out, err := apply(field.String(), tag)
			if err != nil {
				return fmt.Errorf("%s: %w", rt.Field(i).Name, err)
			}
			field.SetString(out)
		case reflect.Struct:
			if err := walk(field); err != nil {
				return err
			}
		case reflect.Pointer:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				if err := walk(field.Elem()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func apply(s, tag string) (string, error) {
	for _, name := range strings.Split(tag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if limit, ok := strings.CutPrefix(name, "max:"); ok {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 1 {
				return "", fmt.Errorf("%w: %q", ErrUnknownRule, name)
			}
			s = MaxLength(s, n)
			continue
		}
		fn, ok := rules[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		s = fn(s)
	}
	return s, nil
}
