package datarecording

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/fatih/structs"
)

var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func tableNameMustBeValid(name string) {
	if !validTableName.MatchString(name) {
		panic(fmt.Sprintf("invalid table name %q", name))
	}
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}

	return false
}

// structType returns the type of a struct entry, dereferencing pointers.
func structType(entry any) (reflect.Type, error) {
	t := reflect.TypeOf(entry)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entry of type %T is not a struct", entry)
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		if !isAllowedKind(f.Type.Kind()) {
			return nil, fmt.Errorf("field %s of %s has unsupported kind %s",
				f.Name, t, f.Type.Kind())
		}
	}

	return t, nil
}

// columnNames returns the names of the exported fields of the entry.
func columnNames(entry any) []string {
	return structs.Names(entry)
}

// columnValues returns the values of the exported fields of the entry, in
// the order of columnNames.
func columnValues(entry any) []any {
	return structs.Values(entry)
}
