package grantfile

import (
	"context"
)

// MapRoleRepo answers role lookups from a fixed set of grants. It backs
// roles.source=config, where the grant table is not consulted.
type MapRoleRepo struct {
	grants map[Grant]struct{}
}

// NewMapRoleRepo creates a role repo holding the valid entries of grants.
func NewMapRoleRepo(grants []Grant) *MapRoleRepo {
	m := &MapRoleRepo{grants: make(map[Grant]struct{}, len(grants))}
	for _, g := range grants {
		if g.valid() {
			m.grants[g] = struct{}{}
		}
	}
	return m
}

// HasRole reports whether identity holds role.
func (m *MapRoleRepo) HasRole(_ context.Context, identity, role string) (bool, error) {
	_, ok := m.grants[Grant{Identity: identity, Role: role}]
	return ok, nil
}
