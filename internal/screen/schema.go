package screen

import (
	"strings"

	"github.com/ingenzi/console-gateway/internal/models"
)

// FieldKind enumerates the input kinds a screen form can render.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldDate     FieldKind = "date"
	FieldSelect   FieldKind = "select"
	FieldFile     FieldKind = "file"
)

// Field describes one form field of a resource screen.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// OptionsFrom names the registry whose records populate a select field.
	OptionsFrom string `json:"optionsFrom,omitempty"`
	// OptionLabel is the record field shown as the option text, "name" by
	// default.
	OptionLabel string `json:"optionLabel,omitempty"`
}

// FilterBar describes the filter controls above the table.
type FilterBar struct {
	// SelectField filters on a select-backed field, empty for none.
	SelectField string `json:"selectField,omitempty"`
	// TextField filters on a free-text field, empty for none.
	TextField string `json:"textField,omitempty"`
	// DateRange enables from/to date inputs.
	DateRange bool `json:"dateRange"`
}

// Schema is everything needed to instantiate a generic resource screen:
// schema in, screen out.
type Schema struct {
	Title   string     `json:"title"`
	Fields  []Field    `json:"fields"`
	Filter  *FilterBar `json:"filter,omitempty"`
	// Columns lists the field names shown in the table and exports; when
	// empty, all non-file fields are shown.
	Columns []string `json:"columns,omitempty"`
	// LockField names a boolean record field marking rows the platform
	// manages itself; such rows cannot be edited or deleted from the console.
	LockField string `json:"lockField,omitempty"`
}

// RowLocked reports whether the record is system managed per LockField.
func (s Schema) RowLocked(row models.Record) bool {
	if s.LockField == "" || row == nil {
		return false
	}
	switch value := row[s.LockField].(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(value, "true")
	case float64:
		return value != 0
	}
	return false
}

// RequiredFields returns the names of fields that must be present on submit.
func (s Schema) RequiredFields() []Field {
	required := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Required {
			required = append(required, field)
		}
	}
	return required
}

// FileField returns the file field if the schema declares one.
func (s Schema) FileField() *Field {
	for i := range s.Fields {
		if s.Fields[i].Kind == FieldFile {
			return &s.Fields[i]
		}
	}
	return nil
}

// SelectSources returns the distinct registries referenced by select fields.
func (s Schema) SelectSources() []string {
	seen := make(map[string]struct{})
	sources := make([]string, 0)
	for _, field := range s.Fields {
		if field.Kind != FieldSelect || field.OptionsFrom == "" {
			continue
		}
		if _, ok := seen[field.OptionsFrom]; ok {
			continue
		}
		seen[field.OptionsFrom] = struct{}{}
		sources = append(sources, field.OptionsFrom)
	}
	return sources
}

// TableColumns resolves the column list, defaulting to all non-file fields.
func (s Schema) TableColumns() []Field {
	if len(s.Columns) > 0 {
		byName := make(map[string]Field, len(s.Fields))
		for _, field := range s.Fields {
			byName[field.Name] = field
		}
		columns := make([]Field, 0, len(s.Columns))
		for _, name := range s.Columns {
			if field, ok := byName[name]; ok && field.Kind != FieldFile {
				columns = append(columns, field)
			}
		}
		return columns
	}
	columns := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Kind != FieldFile {
			columns = append(columns, field)
		}
	}
	return columns
}
