package docdex

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "docdex"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type // struct type for reconstruction

	// Field index in the struct for each role.
	idIdx      int
	contentIdx int // -1 if not present

	// Schema fields for collection creation.
	fields []FieldInfo

	// Mapping from struct field index → document field name.
	stringFields  []fieldMapping // tag and text fields
	numericFields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts docdex struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("docdex: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, contentIdx: -1}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f.Name, tag); err != nil {
			return nil, err
		}
	}

	if meta.idIdx == -1 {
		return nil, fmt.Errorf("docdex: no field with `docdex:\"...,id\"` tag in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's docdex tag.
func applyTag(meta *schemaMeta, idx int, fieldName, tag string) error {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	modifier := ""
	if len(parts) == 2 {
		modifier = parts[1]
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("docdex: duplicate id tag on field %s", fieldName)
		}
		meta.idIdx = idx
	case "content":
		if meta.contentIdx != -1 {
			return fmt.Errorf("docdex: duplicate content tag on field %s", fieldName)
		}
		meta.contentIdx = idx
	case "tag":
		meta.fields = append(meta.fields, FieldInfo{Name: name, Type: FieldTag})
		meta.stringFields = append(meta.stringFields, fieldMapping{structIdx: idx, name: name})
	case "text":
		meta.fields = append(meta.fields, FieldInfo{Name: name, Type: FieldText})
		meta.stringFields = append(meta.stringFields, fieldMapping{structIdx: idx, name: name})
	case "numeric":
		meta.fields = append(meta.fields, FieldInfo{Name: name, Type: FieldNumeric})
		meta.numericFields = append(meta.numericFields, fieldMapping{structIdx: idx, name: name})
	case "":
		// Mapped name without modifier: carried but not indexed.
	default:
		return fmt.Errorf("docdex: unknown modifier %q on field %s", modifier, fieldName)
	}
	return nil
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	id := fmt.Sprint(v.Field(m.idIdx).Interface())

	var content string
	if m.contentIdx != -1 {
		content = fmt.Sprint(v.Field(m.contentIdx).Interface())
	}

	tags := make(map[string]string, len(m.stringFields))
	for _, sf := range m.stringFields {
		tags[sf.name] = fmt.Sprint(v.Field(sf.structIdx).Interface())
	}

	numerics := make(map[string]float64, len(m.numericFields))
	for _, nf := range m.numericFields {
		numerics[nf.name] = toFloat64(v.Field(nf.structIdx))
	}

	return Document{
		ID: id, Content: content,
		Tags: tags, Numerics: numerics,
	}
}

// fromDocument converts a Document back to a typed struct using schema metadata.
func (m *schemaMeta) fromDocument(doc Document) any {
	v := reflect.New(m.typ).Elem()

	v.Field(m.idIdx).SetString(doc.ID)
	if m.contentIdx != -1 {
		v.Field(m.contentIdx).SetString(doc.Content)
	}
	for _, sf := range m.stringFields {
		if val, ok := doc.Tags[sf.name]; ok {
			v.Field(sf.structIdx).SetString(val)
		}
	}
	for _, nf := range m.numericFields {
		if val, ok := doc.Numerics[nf.name]; ok {
			setFloat(v.Field(nf.structIdx), val)
		}
	}
	return v.Interface()
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}

func setFloat(v reflect.Value, f float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(f))
	}
}
