// Package authz resolves role privileges from a static configuration file.
// It stands in for the external authorization service in deployments that
// manage the role table out of band.
package authz

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
)

type fileRole struct {
	ID         string   `mapstructure:"id"`
	Privileges []string `mapstructure:"privileges"`
}

// StaticAuthorizer answers privilege checks from an immutable role table
// loaded at startup.
type StaticAuthorizer struct {
	privileges map[string]map[string]struct{}
}

// NewStaticAuthorizer reads the role file.
func NewStaticAuthorizer(path string) (*StaticAuthorizer, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read role file %s: %w", path, err)
	}

	var raw struct {
		Roles []fileRole `mapstructure:"roles"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse role file: %w", err)
	}

	privileges := make(map[string]map[string]struct{}, len(raw.Roles))
	for _, role := range raw.Roles {
		if role.ID == "" {
			return nil, fmt.Errorf("role file contains an entry without an id")
		}
		grants := make(map[string]struct{}, len(role.Privileges))
		for _, p := range role.Privileges {
			grants[p] = struct{}{}
		}
		privileges[role.ID] = grants
	}
	return &StaticAuthorizer{privileges: privileges}, nil
}

var _ portssvc.PrivilegeAuthorizer = (*StaticAuthorizer)(nil)

// RoleHasPrivilege reports whether the role grants the privilege. Unknown
// roles grant nothing.
func (a *StaticAuthorizer) RoleHasPrivilege(ctx context.Context, roleID string, privilegeID string) (bool, error) {
	grants, ok := a.privileges[roleID]
	if !ok {
		return false, nil
	}
	_, ok = grants[privilegeID]
	return ok, nil
}
