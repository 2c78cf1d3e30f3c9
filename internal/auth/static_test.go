package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.toml")
	content := `
[[keys]]
id = "ci"
name = "CI reload job"
token = "plain-secret"
scopes = ["write"]

[[keys]]
id = "dash"
name = "Dashboard"
token = "other-secret"
scopes = ["read"]
rate_limit = 120
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write keys file: %v", err)
	}

	kf, err := LoadKeysFile(path)
	if err != nil {
		t.Fatalf("LoadKeysFile failed: %v", err)
	}
	if len(kf.Keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(kf.Keys))
	}
	if kf.Keys[0].ID != "ci" || kf.Keys[0].Token != "plain-secret" {
		t.Errorf("First key not parsed: %+v", kf.Keys[0])
	}
	if kf.Keys[1].RateLimit == nil || *kf.Keys[1].RateLimit != 120 {
		t.Errorf("rate_limit not parsed: %+v", kf.Keys[1])
	}
	if err := kf.Validate(); err != nil {
		t.Errorf("Loaded keys file should validate: %v", err)
	}
}

func TestLoadKeysFileMissing(t *testing.T) {
	kf, err := LoadKeysFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Missing keys file should not error: %v", err)
	}
	if len(kf.Keys) != 0 {
		t.Errorf("Expected empty key list, got %d", len(kf.Keys))
	}
}

func TestLoadKeysFileExpandsEnv(t *testing.T) {
	t.Setenv("JOKEBOX_TEST_TOKEN", "expanded-secret")

	path := filepath.Join(t.TempDir(), "auth.toml")
	content := `
[[keys]]
id = "env"
token = "${JOKEBOX_TEST_TOKEN}"
scopes = ["read"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write keys file: %v", err)
	}

	kf, err := LoadKeysFile(path)
	if err != nil {
		t.Fatalf("LoadKeysFile failed: %v", err)
	}
	if kf.Keys[0].Token != "expanded-secret" {
		t.Errorf("Expected env expansion, got %q", kf.Keys[0].Token)
	}
}

func TestLoadKeysFileInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0600); err != nil {
		t.Fatalf("Failed to write keys file: %v", err)
	}

	if _, err := LoadKeysFile(path); err == nil {
		t.Error("Invalid TOML should fail")
	}
}
