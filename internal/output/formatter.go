package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Formatter renders command results.
type Formatter interface {
	Format(data any) (string, error)
}

// Formats lists the accepted --output values.
var Formats = []string{"text", "json", "yaml"}

// NewFormatter returns the formatter for format. Unknown names are an error
// so a typo in --output fails loudly.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return TextFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	case "yaml":
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// TextFormatter prints structs and maps as aligned key/value lines and
// slices of structs as a table.
type TextFormatter struct{}

func (TextFormatter) Format(data any) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omit := fieldName(f)
			fv := v.Field(i)
			if omit && fv.IsZero() {
				continue
			}
			if fv.Kind() == reflect.Ptr && !fv.IsNil() {
				fv = fv.Elem()
			}
			fmt.Fprintf(w, "%s:\t%v\n", name, fv.Interface())
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		values := make(map[string]any, v.Len())
		for _, k := range v.MapKeys() {
			key := fmt.Sprint(k.Interface())
			keys = append(keys, key)
			values[key] = v.MapIndex(k).Interface()
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s:\t%v\n", k, values[k])
		}
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "none\n", nil
		}
		elem := v.Index(0)
		for elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			break
		}
		t := elem.Type()
		headers := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			name, _ := fieldName(t.Field(i))
			headers = append(headers, strings.ToUpper(name))
		}
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for i := 0; i < v.Len(); i++ {
			row := v.Index(i)
			for row.Kind() == reflect.Ptr {
				row = row.Elem()
			}
			vals := make([]string, 0, row.NumField())
			for j := 0; j < row.NumField(); j++ {
				if !t.Field(j).IsExported() {
					continue
				}
				vals = append(vals, fmt.Sprintf("%v", row.Field(j).Interface()))
			}
			fmt.Fprintln(w, strings.Join(vals, "\t"))
		}
	default:
		fmt.Fprintln(w, data)
	}

	if err := w.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fieldName prefers the json tag so text and json output agree on names.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format json: %w", err)
	}
	return string(b) + "\n", nil
}

// YAMLFormatter renders YAML.
type YAMLFormatter struct{}

func (YAMLFormatter) Format(data any) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("format yaml: %w", err)
	}
	return string(b), nil
}
