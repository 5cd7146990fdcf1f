// Package mapping translates field names between the camelCase objects used
// by API clients and the snake_case columns of the database.
package mapping

import "github.com/iancoleman/strcase"

// Dictionary is a reversible camelCase <-> snake_case field mapping for one entity.
// Keys that are not in the dictionary fall back to generic case conversion.
type Dictionary struct {
	toRemote map[string]string
	toLocal  map[string]string
}

// NewDictionary builds a Dictionary from camelCase -> snake_case pairs.
// It panics when two local names map onto the same column.
func NewDictionary(pairs map[string]string) *Dictionary {
	d := &Dictionary{
		toRemote: make(map[string]string, len(pairs)),
		toLocal:  make(map[string]string, len(pairs)),
	}
	for local, remote := range pairs {
		if prev, dup := d.toLocal[remote]; dup {
			panic("mapping: column " + remote + " mapped from both " + prev + " and " + local)
		}
		d.toRemote[local] = remote
		d.toLocal[remote] = local
	}
	return d
}

// Column returns the snake_case column for a camelCase field
func (d *Dictionary) Column(field string) string {
	if c, ok := d.toRemote[field]; ok {
		return c
	}
	return strcase.ToSnake(field)
}

// Field returns the camelCase field for a snake_case column. Repositories
// use it to name the field behind a column the database rejected.
func (d *Dictionary) Field(column string) string {
	if f, ok := d.toLocal[column]; ok {
		return f
	}
	return strcase.ToLowerCamel(column)
}

// Known reports whether the camelCase field is declared in the dictionary
func (d *Dictionary) Known(field string) bool {
	_, ok := d.toRemote[field]
	return ok
}

// Columns returns the declared columns
func (d *Dictionary) Columns() []string {
	cols := make([]string, 0, len(d.toLocal))
	for c := range d.toLocal {
		cols = append(cols, c)
	}
	return cols
}

// ToRemote renames the keys of a camelCase object to column names
func (d *Dictionary) ToRemote(obj map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[d.Column(k)] = v
	}
	return out
}
