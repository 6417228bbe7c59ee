package contact

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FormField is the name of the form array holding submitted rows.
const FormField = "_contacts"

// Row field names within the form array.
const (
	FieldName        = "_name"
	FieldEmail       = "_email"
	FieldFirstName   = "_firstname"
	FieldSurname     = "_surname"
	FieldAddressBook = "_addressbook"
	FieldGroup       = "_group"
)

// Row is one contact submitted for saving.
type Row struct {
	Name        string
	Email       string
	FirstName   string
	Surname     string
	AddressBook string
	Group       string
}

// FormKey returns the form key of field for the row with the given key.
func FormKey(key, field string) string {
	return FormField + "[" + key + "][" + field + "]"
}

// Encode writes rows into form using FormKey names.
func Encode(form url.Values, rows map[string]Row) {
	for key, r := range rows {
		form.Set(FormKey(key, FieldName), r.Name)
		form.Set(FormKey(key, FieldEmail), r.Email)
		form.Set(FormKey(key, FieldFirstName), r.FirstName)
		form.Set(FormKey(key, FieldSurname), r.Surname)
		form.Set(FormKey(key, FieldAddressBook), r.AddressBook)
		form.Set(FormKey(key, FieldGroup), r.Group)
	}
}

// ParseForm extracts the rows from form values named _contacts[key][field].  Unknown fields and
// malformed names are ignored.
func ParseForm(form url.Values) map[string]Row {
	rows := make(map[string]Row)
	prefix := FormField + "["
	for name, values := range form {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || len(values) == 0 {
			continue
		}
		key, rest, ok := strings.Cut(rest, "][")
		if !ok || key == "" {
			continue
		}
		field, ok := strings.CutSuffix(rest, "]")
		if !ok {
			continue
		}

		r := rows[key]
		v := values[0]
		switch field {
		case FieldName:
			r.Name = v
		case FieldEmail:
			r.Email = v
		case FieldFirstName:
			r.FirstName = v
		case FieldSurname:
			r.Surname = v
		case FieldAddressBook:
			r.AddressBook = v
		case FieldGroup:
			r.Group = v
		default:
			continue
		}
		rows[key] = r
	}
	return rows
}

// SortedKeys returns the row keys, numeric keys first in numeric order, then the rest sorted.
func SortedKeys[V any](rows map[string]V) []string {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}
