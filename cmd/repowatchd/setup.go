package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// runSetupCredentials interactively provisions the HTTPS credentials
// store at ~/.git-credentials. This is the only place in the program
// that writes credentials to disk; the daemon itself only ever reads
// the store.
func runSetupCredentials() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}
	storePath := filepath.Join(homeDir, ".git-credentials")

	fmt.Println("=== Git Credentials Setup ===")
	fmt.Printf("This will write an HTTPS credential entry to %s.\n", storePath)

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Continue? (y/n): ")
	answer, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		return fmt.Errorf("aborted by user")
	}

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	fmt.Print("Personal access token: ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("cannot read token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	entry := fmt.Sprintf("https://%s:%s@github.com\n", username, token)
	if err := os.WriteFile(storePath, []byte(entry), 0o600); err != nil {
		return fmt.Errorf("cannot write %s: %w", storePath, err)
	}

	fmt.Printf("Wrote %s (owner-only permissions)\n", storePath)
	return nil
}
