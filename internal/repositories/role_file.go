package repositories

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/resume-screener/internal/models"
)

type roleFile struct {
	Roles []models.RoleProfile `yaml:"roles"`
}

// LoadRoleProfiles reads role profiles from a YAML file of the form
// "roles: [{slug, title, rubric, threshold}]".
func LoadRoleProfiles(path string) ([]models.RoleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}

	roles, err := ParseRoleProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roles, nil
}

func ParseRoleProfiles(data []byte) ([]models.RoleProfile, error) {
	var file roleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse roles: %w", err)
	}

	seen := make(map[string]bool, len(file.Roles))
	for i := range file.Roles {
		if err := ValidateRole(&file.Roles[i]); err != nil {
			return nil, err
		}
		if seen[file.Roles[i].Slug] {
			return nil, fmt.Errorf("duplicate role slug %q", file.Roles[i].Slug)
		}
		seen[file.Roles[i].Slug] = true
	}

	return file.Roles, nil
}
