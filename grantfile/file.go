package grantfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Grant is one identity-to-role pair.
type Grant struct {
	Identity string `json:"identity" mapstructure:"identity"`
	Role     string `json:"role" mapstructure:"role"`
}

func (g Grant) valid() bool {
	return strings.TrimSpace(g.Identity) != "" && strings.TrimSpace(g.Role) != ""
}

// LoadGrantsFromFile loads role grants from a JSON file.
// The file should contain an array of grants:
//
//	[
//	  {"identity": "owner@example.com", "role": "admin"},
//	  {"identity": "editor@example.com", "role": "admin"}
//	]
//
// Entries missing either field are skipped.
func LoadGrantsFromFile(path string) ([]Grant, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read grants file: %w", err)
	}

	var raw []Grant
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse grants file: %w", err)
	}

	grants := make([]Grant, 0, len(raw))
	for _, g := range raw {
		if g.valid() {
			grants = append(grants, g)
		}
	}

	return grants, nil
}
