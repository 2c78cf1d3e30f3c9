package auth

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// StaticKey defines an API key declared in the keys file. Tokens are stored
// in plaintext there; the file is expected to be permission-restricted.
// ${VAR} values are expanded from the environment.
type StaticKey struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Token     string   `toml:"token"`
	Scopes    []string `toml:"scopes"`
	RateLimit *int     `toml:"rate_limit"`
}

// KeysFile is the TOML document shape of .jokebox/auth.toml
type KeysFile struct {
	Keys []StaticKey `toml:"keys"`
}

// LoadKeysFile reads static API keys from a TOML file.
// A missing file yields an empty key list.
func LoadKeysFile(path string) (*KeysFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &KeysFile{}, nil
	}

	var kf KeysFile
	if _, err := toml.DecodeFile(path, &kf); err != nil {
		return nil, fmt.Errorf("decode keys file %s: %w", path, err)
	}

	for i := range kf.Keys {
		kf.Keys[i].Token = os.ExpandEnv(kf.Keys[i].Token)
	}

	return &kf, nil
}

// Validate checks the keys file for usable entries
func (kf *KeysFile) Validate() error {
	seen := make(map[string]bool)
	for i, key := range kf.Keys {
		if key.ID == "" {
			return fmt.Errorf("static key %d is missing an id", i)
		}
		if seen[key.ID] {
			return fmt.Errorf("duplicate static key id %q", key.ID)
		}
		seen[key.ID] = true
		if key.Token == "" {
			return fmt.Errorf("static key %q has an empty token", key.ID)
		}
		for _, s := range key.Scopes {
			if !Scope(s).IsValid() {
				return fmt.Errorf("static key %q has invalid scope %q", key.ID, s)
			}
		}
	}
	return nil
}
