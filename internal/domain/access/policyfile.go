package access

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyFile is the on-disk override format:
//
//	permissions:
//	  users.manage: [super_admin, main_admin, hr_admin]
type PolicyFile struct {
	Permissions map[string][]string `yaml:"permissions"`
}

// LoadPolicyFile reads path and applies it on top of base.
func LoadPolicyFile(path string, base *Table) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(bytes.NewReader(data), base)
}

// ParsePolicy decodes a policy document and returns base with the listed
// permissions replaced. Permissions absent from the document keep their base
// lists; unknown keys and roles are rejected.
func ParsePolicy(r io.Reader, base *Table) (*Table, error) {
	var doc PolicyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	overrides := make(map[Permission][]Role, len(doc.Permissions))
	for key, raw := range doc.Permissions {
		if key == "" {
			return nil, ErrEmptyPermission
		}
		roles := make([]Role, 0, len(raw))
		for _, value := range raw {
			role, ok := ParseRole(value)
			if !ok {
				return nil, fmt.Errorf("%w %q in %s", ErrUnknownRole, value, key)
			}
			roles = append(roles, role)
		}
		overrides[Permission(key)] = roles
	}
	return base.WithOverrides(overrides)
}

// MarshalPolicy renders t in the policy file format.
func MarshalPolicy(t *Table) ([]byte, error) {
	doc := PolicyFile{Permissions: make(map[string][]string)}
	for _, entry := range t.Entries() {
		roles := make([]string, 0, len(entry.Allowed))
		for _, role := range entry.Allowed {
			roles = append(roles, string(role))
		}
		doc.Permissions[string(entry.Permission)] = roles
	}
	return yaml.Marshal(doc)
}
