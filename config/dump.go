package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// DumpYAML renders cfg as YAML with every secret masked.
func DumpYAML(cfg *Config) ([]byte, error) {
	c := *cfg
	mask(&c.Server.JwtSecretKey)
	mask(&c.Database.Password)
	mask(&c.Redis.Password)
	mask(&c.Email.ResendAPIKey)
	mask(&c.Storage.SecretAccessKey)

	out, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}

func mask(s *string) {
	if *s != "" {
		*s = redacted
	}
}
