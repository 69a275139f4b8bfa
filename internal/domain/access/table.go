package access

import (
	"fmt"
	"slices"
	"strings"
)

// Table is an immutable permission table. It is built once at startup and
// shared by reference; every accessor returns copies so callers cannot mutate
// it. A Table is safe for concurrent use.
type Table struct {
	order   []Permission
	entries map[Permission]Entry
}

// NewTable validates rows and builds a Table. Keys must be non-empty and
// unique, and every allowed role must be one of the fixed roles.
func NewTable(rows []Entry) (*Table, error) {
	t := &Table{
		order:   make([]Permission, 0, len(rows)),
		entries: make(map[Permission]Entry, len(rows)),
	}
	for _, row := range rows {
		key := Permission(strings.TrimSpace(string(row.Permission)))
		if key == "" {
			return nil, ErrEmptyPermission
		}
		if _, exists := t.entries[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePermission, key)
		}
		allowed := make([]Role, 0, len(row.Allowed))
		seen := make(map[Role]struct{}, len(row.Allowed))
		for _, role := range row.Allowed {
			if !role.Valid() {
				return nil, fmt.Errorf("%w %q in %s", ErrUnknownRole, role, key)
			}
			if _, dup := seen[role]; dup {
				continue
			}
			seen[role] = struct{}{}
			allowed = append(allowed, role)
		}
		t.order = append(t.order, key)
		t.entries[key] = Entry{Permission: key, Description: row.Description, Allowed: allowed}
	}
	return t, nil
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultEntries())
	if err != nil {
		panic("access: invalid default permission table: " + err.Error())
	}
	return t
}

// Allowed returns the allowed-role list for permission and whether the key
// exists. The list does not mention the super admin override.
func (t *Table) Allowed(permission Permission) ([]Role, bool) {
	entry, ok := t.entries[permission]
	if !ok {
		return nil, false
	}
	return slices.Clone(entry.Allowed), true
}

func (t *Table) Has(permission Permission) bool {
	_, ok := t.entries[permission]
	return ok
}

// Can evaluates role against the permission's allowed-role list. Unknown
// permission keys have an empty list, so only the super admin passes.
func (t *Table) Can(role Role, permission Permission) bool {
	return HasPermission(role, t.entries[permission].Allowed)
}

// Permissions returns the keys in table order.
func (t *Table) Permissions() []Permission {
	return slices.Clone(t.order)
}

// Entries returns copies of every row in table order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, key := range t.order {
		entry := t.entries[key]
		entry.Allowed = slices.Clone(entry.Allowed)
		out = append(out, entry)
	}
	return out
}

// GrantedTo lists the permissions role holds, including those it holds only
// through the super admin override.
func (t *Table) GrantedTo(role Role) []Permission {
	out := make([]Permission, 0, len(t.order))
	for _, key := range t.order {
		if t.Can(role, key) {
			out = append(out, key)
		}
	}
	return out
}

// WithOverrides returns a new Table whose listed permissions take the given
// allowed-role lists. Keys must already exist in t.
func (t *Table) WithOverrides(overrides map[Permission][]Role) (*Table, error) {
	for key := range overrides {
		if !t.Has(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, key)
		}
	}
	rows := t.Entries()
	for i, row := range rows {
		if roles, ok := overrides[row.Permission]; ok {
			rows[i].Allowed = slices.Clone(roles)
		}
	}
	return NewTable(rows)
}
