package appconfig

import (
	"fmt"
	"strings"
)

const (
	SectorRoleExtrusion     = "extrusion"
	SectorRoleThermoforming = "thermoforming"
)

// SectorRoleMap maps a sector role (see SectorRole* constants) to a sector name.
type SectorRoleMap map[string]string

func (m *SectorRoleMap) Decode(value string) error {
	*m = SectorRoleMap{}
	if strings.TrimSpace(value) == "" {
		return nil
	}
	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[1]) == "" {
			return fmt.Errorf("invalid sector role map: expect a `:` separated key pair for each element, but got: %s", value)
		}
		role := strings.TrimSpace(kv[0])
		if role != SectorRoleExtrusion && role != SectorRoleThermoforming {
			return fmt.Errorf("invalid sector role map: unknown role %q", role)
		}
		(*m)[role] = strings.TrimSpace(kv[1])
	}
	return nil
}
