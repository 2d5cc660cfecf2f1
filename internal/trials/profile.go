// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// LoadProfile reads a PatientProfile from a YAML file so a profile can be
// reused across searches and eligibility checks.
func LoadProfile(path string) (*types.PatientProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p types.PatientProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if strings.TrimSpace(p.Condition) == "" {
		return nil, fmt.Errorf("profile %s: condition is required", path)
	}
	return &p, nil
}

// SaveProfile writes a PatientProfile to a YAML file.
func SaveProfile(path string, p types.PatientProfile) error {
	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
