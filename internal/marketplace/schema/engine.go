package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const tagNotFutureYear = "notfuture_year"

// now is swapped in tests that pin the current year.
var now = time.Now

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so violations match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(tagNotFutureYear, func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(now().Year())
	})
	return v
}

// normalizer trims and canonicalizes decoded input before rules run.
type normalizer interface {
	normalize()
}

type field struct {
	name  string
	index []int
	tag   string
	pos   int
	kind  reflect.Kind
}

var fieldCache sync.Map // reflect.Type -> []field

// fieldsOf lists the json-named fields of struct type t, including those
// promoted from embedded structs.
func fieldsOf(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}

	var out []field
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out = append(out, field{
			name:  name,
			index: sf.Index,
			tag:   sf.Tag.Get("validate"),
			pos:   len(out),
			kind:  sf.Type.Kind(),
		})
	}

	fieldCache.Store(t, out)
	return out
}

func posOf(fields []field, name string) int {
	name, _, _ = strings.Cut(name, "[")
	for _, f := range fields {
		if f.name == name {
			return f.pos
		}
	}
	return len(fields)
}

// parseObject splits a JSON object into raw members so presence is known.
func parseObject(payload []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil, single("body", RuleJSON, "request body must be a JSON object")
	}
	return raw, nil
}

// decodeFields fills dst from the members of raw that match its fields.
// Explicit nulls count as absent. Returns the fields that decoded cleanly.
func decodeFields(raw map[string]json.RawMessage, dst any, fields []field, c *collector) []field {
	v := reflect.ValueOf(dst).Elem()

	var present []field
	for _, f := range fields {
		msg, ok := raw[f.name]
		if !ok || string(msg) == "null" {
			continue
		}
		if err := json.Unmarshal(msg, v.FieldByIndex(f.index).Addr().Interface()); err != nil {
			c.add(f.pos, f.name, RuleType, "must be "+kindName(f.kind))
			continue
		}
		present = append(present, f)
	}
	return present
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "a string"
	case reflect.Slice:
		return "a list of strings"
	case reflect.Int, reflect.Int64:
		return "an integer"
	case reflect.Bool:
		return "a boolean"
	case reflect.Pointer:
		return "a valid value"
	default:
		return "a number"
	}
}

// checkStruct decodes the whole payload into dst and runs every rule.
func checkStruct(raw map[string]json.RawMessage, dst any, c *collector) {
	fields := fieldsOf(reflect.TypeOf(dst).Elem())
	decodeFields(raw, dst, fields, c)
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	var ves validator.ValidationErrors
	if err := validate.Struct(dst); errors.As(err, &ves) {
		for _, fe := range ves {
			pos := posOf(fields, fe.Field())
			tags := ""
			if pos < len(fields) {
				tags = fields[pos].tag
			}
			c.add(pos, fe.Field(), fe.Tag(), message(fe.Tag(), fe.Param(), tags))
		}
	}
}

// checkPresent decodes only the supplied members of raw into dst and runs
// each present field's rules on its own. Absent fields are not checked.
func checkPresent(raw map[string]json.RawMessage, dst any, c *collector) []field {
	fields := fieldsOf(reflect.TypeOf(dst).Elem())
	present := decodeFields(raw, dst, fields, c)
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	v := reflect.ValueOf(dst).Elem()
	var ves validator.ValidationErrors
	for _, f := range present {
		if f.tag == "" {
			continue
		}
		if err := validate.Var(v.FieldByIndex(f.index).Interface(), f.tag); errors.As(err, &ves) && len(ves) > 0 {
			c.add(f.pos, f.name, ves[0].Tag(), message(ves[0].Tag(), ves[0].Param(), f.tag))
		}
	}
	return present
}

func trim(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}
