package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// defaultHostKeyCallback verifies against ~/.ssh/known_hosts, creating an
// empty file if none exists yet so a first connection doesn't fail outright
// just because the file is missing.
func defaultHostKeyCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o700); mkErr != nil {
			return nil, fmt.Errorf("create .ssh dir: %w", mkErr)
		}
		if f, createErr := os.OpenFile(path, os.O_CREATE, 0o600); createErr == nil {
			f.Close()
		}
	}
	return knownhosts.New(path)
}
