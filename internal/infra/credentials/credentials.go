package credentials

import (
	"errors"
	"strings"
)

// EnvKeys lists the environment variables consulted for the FAL API key, in
// priority order.
var EnvKeys = []string{"FAL_API_KEY", "FAL_KEY"}

// ErrMissingAPIKey indicates that no explicit key was given and none of the
// environment variables in EnvKeys is set.
var ErrMissingAPIKey = errors.New("FAL_API_KEY or FAL_KEY not found: set one of these environment variables or pass an api key")

// Resolve picks the API key: explicit wins, then the first non-empty variable
// in EnvKeys as reported by lookup.
func Resolve(explicit string, lookup func(string) string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if lookup != nil {
		for _, name := range EnvKeys {
			if key := strings.TrimSpace(lookup(name)); key != "" {
				return key, nil
			}
		}
	}
	return "", ErrMissingAPIKey
}
