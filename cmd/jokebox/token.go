package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"jokebox/internal/auth"
	"jokebox/internal/storage"

	"github.com/spf13/cobra"
)

var (
	tokenName      string
	tokenScopes    []string
	tokenRateLimit int
	tokenFormat    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
	Long: `Create, list, and revoke API tokens for authenticating with the Jokebox server.

Tokens are stored in .jokebox/jokebox.db. The plaintext token is shown once
at creation and cannot be recovered afterwards.

Examples:
  jokebox token create --name "Reload job" --scopes write
  jokebox token list
  jokebox token revoke jok_key_abc123`,
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API token",
	Long: `Create a new API token with the given scopes.

Scopes:
  read   - GET requests (lookup, listing, status)
  write  - mutating requests (dataset reload)
  admin  - full access

Examples:
  jokebox token create --name "Reload job" --scopes write
  jokebox token create --name "Dashboard" --scopes read --rate-limit 120`,
	RunE: runTokenCreate,
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all API tokens",
	RunE:  runTokenList,
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenRevoke,
}

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenName, "name", "", "Human-readable token name (required)")
	tokenCreateCmd.Flags().StringSliceVar(&tokenScopes, "scopes", []string{"read"}, "Comma-separated scopes: read, write, admin")
	tokenCreateCmd.Flags().IntVar(&tokenRateLimit, "rate-limit", 0, "Requests per minute (0 = default limit)")
	tokenListCmd.Flags().StringVar(&tokenFormat, "format", "table", "Output format: table or json")

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	rootCmd.AddCommand(tokenCmd)
}

// scopeList renders the valid scope values for flag error messages
func scopeList() string {
	scopes := auth.ValidScopes()
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func openKeyStore() (*auth.KeyStore, *storage.DB, error) {
	cfg, err := loadWorkspaceConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)

	db, err := storage.Open(workspaceDir, logger)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewKeyStore(db, logger), db, nil
}

func runTokenCreate(cmd *cobra.Command, args []string) error {
	if tokenName == "" {
		return fmt.Errorf("--name is required")
	}

	scopes := make([]auth.Scope, 0, len(tokenScopes))
	for _, s := range tokenScopes {
		scope := auth.Scope(strings.TrimSpace(s))
		if !scope.IsValid() {
			return fmt.Errorf("invalid scope %q (valid: %s)", s, scopeList())
		}
		scopes = append(scopes, scope)
	}

	store, db, err := openKeyStore()
	if err != nil {
		return err
	}
	defer db.Close()

	keyID, err := auth.GenerateKeyID()
	if err != nil {
		return err
	}
	token, prefix, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}

	key := &auth.APIKey{
		ID:          keyID,
		Name:        tokenName,
		TokenHash:   hash,
		TokenPrefix: prefix,
		Scopes:      scopes,
		CreatedAt:   time.Now().UTC(),
	}
	if tokenRateLimit > 0 {
		key.RateLimit = &tokenRateLimit
	}

	if err := store.Create(key); err != nil {
		return err
	}

	fmt.Printf("Created API token %q\n\n", tokenName)
	fmt.Printf("  Key ID: %s\n", keyID)
	fmt.Printf("  Token:  %s\n\n", token)
	fmt.Println("Store this token now; it will not be shown again.")
	return nil
}

func runTokenList(cmd *cobra.Command, args []string) error {
	store, db, err := openKeyStore()
	if err != nil {
		return err
	}
	defer db.Close()

	keys, err := store.List()
	if err != nil {
		return err
	}

	if tokenFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No API tokens.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY ID\tNAME\tSCOPES\tCREATED\tLAST USED\tSTATUS")
	for _, key := range keys {
		status := "active"
		if key.Revoked {
			status = "revoked"
		}
		lastUsed := "never"
		if key.LastUsedAt != nil {
			lastUsed = key.LastUsedAt.Format("2006-01-02")
		}
		scopes := make([]string, len(key.Scopes))
		for i, s := range key.Scopes {
			scopes[i] = string(s)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			key.ID, key.Name, strings.Join(scopes, ","),
			key.CreatedAt.Format("2006-01-02"), lastUsed, status)
	}
	return w.Flush()
}

func runTokenRevoke(cmd *cobra.Command, args []string) error {
	store, db, err := openKeyStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Revoke(args[0]); err != nil {
		return err
	}

	fmt.Printf("Revoked %s\n", args[0])
	return nil
}
