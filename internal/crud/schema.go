package crud

import (
	"html/template"
	"net/url"
)

// FieldKind selects the form control rendered for a field.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldPassword    FieldKind = "password"
	FieldEmail       FieldKind = "email"
	FieldNumber      FieldKind = "number"
	FieldTextarea    FieldKind = "textarea"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	FieldCheckbox    FieldKind = "checkbox"
	FieldDate        FieldKind = "date"
	FieldDateTime    FieldKind = "datetime-local"
)

// Option is one choice of a select control or filter dropdown.
type Option struct {
	Value string
	Label string
}

// Field describes one input of the add/edit modal form.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Step        string
	Rows        int
	Placeholder string
	Options     []Option
}

// Filter describes one dropdown of the filter bar.
type Filter struct {
	Name    string
	Label   string
	Options []Option
}

// Column describes one table column.
type Column[T any] struct {
	Label string
	Value func(T) template.HTML
}

// RowAction is a custom per-row mutation beyond edit/delete, such as
// cancelling an order or refunding a payment.
type RowAction[T any] struct {
	Label   string
	Slug    string
	Class   string
	Confirm string
	Show    func(T) bool
}

// DetailRow is one label/value pair of the detail modal.
type DetailRow struct {
	Label string
	Value template.HTML
}

// Schema declares one admin list screen: its columns, form fields,
// filters and capabilities. Concrete pages are schema declarations, not
// hand-rolled copies of fetch/modal/table logic.
type Schema[T any] struct {
	Title      string
	Singular   string
	ID         func(T) string
	Columns    []Column[T]
	Fields     []Field
	Filters    []Filter
	Searchable bool

	CanCreate bool
	CanEdit   bool
	CanDelete bool
	HasDetail bool

	RowActions []RowAction[T]

	// Draft maps a record to form values so an edit modal opens with every
	// field pre-populated from the current server-side state.
	Draft func(T) url.Values
	// Detail renders the read-only detail modal rows.
	Detail func(T) []DetailRow
	// Describe names a record in confirmation prompts and flashes.
	Describe func(T) string
}

// FilterNames lists the query parameter names the screen accepts.
func (s Schema[T]) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for _, f := range s.Filters {
		names = append(names, f.Name)
	}
	return names
}

// Cell escapes a plain string for a table cell.
func Cell(value string) template.HTML {
	return template.HTML(template.HTMLEscapeString(value))
}
