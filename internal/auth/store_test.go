package auth

import (
	"testing"
	"time"

	"jokebox/internal/config"
	"jokebox/internal/storage"
)

func testKeyStore(t *testing.T) *KeyStore {
	t.Helper()

	db, err := storage.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewKeyStore(db, testLogger())
}

func createTestKey(t *testing.T, store *KeyStore, name string, scopes []Scope) (string, string) {
	t.Helper()

	keyID, err := GenerateKeyID()
	if err != nil {
		t.Fatalf("GenerateKeyID failed: %v", err)
	}
	token, prefix, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}

	err = store.Create(&APIKey{
		ID:          keyID,
		Name:        name,
		TokenHash:   hash,
		TokenPrefix: prefix,
		Scopes:      scopes,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return keyID, token
}

func TestKeyStoreRoundTrip(t *testing.T) {
	store := testKeyStore(t)
	keyID, token := createTestKey(t, store, "round trip", []Scope{ScopeRead, ScopeWrite})

	keys, err := store.GetByPrefix(ExtractTokenPrefix(token))
	if err != nil {
		t.Fatalf("GetByPrefix failed: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Expected 1 key, got %d", len(keys))
	}

	key := keys[0]
	if key.ID != keyID {
		t.Errorf("Expected key ID %s, got %s", keyID, key.ID)
	}
	if !VerifyToken(token, key.TokenHash) {
		t.Error("Stored hash should verify the original token")
	}
	if len(key.Scopes) != 2 || key.Scopes[0] != ScopeRead || key.Scopes[1] != ScopeWrite {
		t.Errorf("Scopes not preserved: %v", key.Scopes)
	}
}

func TestKeyStoreRevoke(t *testing.T) {
	store := testKeyStore(t)
	keyID, token := createTestKey(t, store, "to revoke", []Scope{ScopeRead})

	if err := store.Revoke(keyID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	// Revoked keys are excluded from prefix lookup
	keys, err := store.GetByPrefix(ExtractTokenPrefix(token))
	if err != nil {
		t.Fatalf("GetByPrefix failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Revoked key should not be returned, got %d keys", len(keys))
	}

	// But they still appear in the full list
	all, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 || !all[0].Revoked || all[0].RevokedAt == nil {
		t.Errorf("Expected one revoked key in list, got %+v", all)
	}

	// Revoking twice fails
	if err := store.Revoke(keyID); err == nil {
		t.Error("Revoking an already revoked key should fail")
	}
}

func TestKeyStoreRevokeUnknown(t *testing.T) {
	store := testKeyStore(t)

	if err := store.Revoke("jok_key_doesnotexist"); err == nil {
		t.Error("Revoking an unknown key should fail")
	}
}

func TestManagerDatabaseKeys(t *testing.T) {
	db, err := storage.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewKeyStore(db, testLogger())
	_, token := createTestKey(t, store, "db key", []Scope{ScopeWrite})

	cfg := config.AuthConfig{Enabled: true, RequireAuth: true}
	m, err := NewManager(cfg, nil, db, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	key, err := m.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate with database token failed: %v", err)
	}
	if key == nil || !key.HasScope(ScopeWrite) {
		t.Fatalf("Expected write-scoped key, got %v", key)
	}

	// Tampered token is rejected
	tampered := token[:len(token)-1] + "0"
	if tampered == token {
		tampered = token[:len(token)-1] + "1"
	}
	if _, err := m.Authenticate(tampered); err == nil {
		t.Error("Tampered token should be rejected")
	}
}
