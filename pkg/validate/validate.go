// Package validate provides struct-tag validation for request DTOs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required   field must not be zero/empty
//	nullable   if empty, skip all remaining rules for this field
//	email      valid email address
//	numeric    any number
//	min=N      string: min char length | number: min value
//	max=N      string: max char length | number: max value
//	gt=N       number > N
//	gte=N      number >= N
//	in=a,b,c   value must be one of the listed items
//
// Example:
//
//	type Input struct {
//	    Email string  `json:"email" validate:"required,email"`
//	    Role  string  `json:"role"  validate:"required,in=buyer,Seller,admin"`
//	    Price float64 `json:"price" validate:"required,gt=0"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		rules := strings.Split(tag, ",")

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for j := 0; j < len(rules); j++ {
			rule := strings.TrimSpace(rules[j])
			if rule == "" || rule == "nullable" {
				continue
			}
			// in= consumes the remaining comma-separated items.
			if strings.HasPrefix(rule, "in=") {
				rule = strings.Join(append([]string{rule}, rules[j+1:]...), ",")
				j = len(rules)
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("the %s field is required", field)
		}
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("the %s must be a valid email address", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("the %s must be a number", field)
		}
	case "min":
		if !compareRule(v, param, func(n, p float64) bool { return n >= p }) {
			return fmt.Sprintf("the %s must be at least %s", field, param)
		}
	case "max":
		if !compareRule(v, param, func(n, p float64) bool { return n <= p }) {
			return fmt.Sprintf("the %s may not be greater than %s", field, param)
		}
	case "gt":
		if !compareRule(v, param, func(n, p float64) bool { return n > p }) {
			return fmt.Sprintf("the %s must be greater than %s", field, param)
		}
	case "gte":
		if !compareRule(v, param, func(n, p float64) bool { return n >= p }) {
			return fmt.Sprintf("the %s must be at least %s", field, param)
		}
	case "in":
		for _, item := range strings.Split(param, ",") {
			if raw == item {
				return ""
			}
		}
		return fmt.Sprintf("the selected %s is invalid", field)
	}

	return ""
}

// compareRule compares a numeric value (or a string's length) against param.
func compareRule(v reflect.Value, param string, cmp func(n, p float64) bool) bool {
	p, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return false
	}

	switch v.Kind() {
	case reflect.String:
		return cmp(float64(len(v.String())), p)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp(float64(v.Int()), p)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp(float64(v.Uint()), p)
	case reflect.Float32, reflect.Float64:
		return cmp(v.Float(), p)
	default:
		return false
	}
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == name {
			return true
		}
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
