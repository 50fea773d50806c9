package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/ssh"

	"itmux/internal/sshtransport"
	"itmux/pkg/blobstore"
	"itmux/pkg/connection"
	"itmux/pkg/credential"
	"itmux/pkg/hostprofile"
)

func main() {
	var (
		flagConfig       string
		flagPrintConfig  bool
		flagStateDir     string
		flagInsecureHost bool
	)
	flag.StringVar(&flagConfig, "config", "", "path to YAML config (defaults to XDG paths if empty)")
	flag.BoolVar(&flagPrintConfig, "print-config-path", false, "print resolved config path and exit")
	flag.StringVar(&flagStateDir, "state-dir", "", "directory for persisted host/credential state (defaults to XDG config dir)")
	flag.BoolVar(&flagInsecureHost, "insecure-host-keys", false, "accept any SSH host key without verification")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "itmux: a tmux control-mode terminal multiplexer client\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, cfgPath, err := LoadConfig(flagConfig)
	if err != nil && err != ErrConfigNotFound {
		fmt.Fprintln(os.Stderr, "itmux:", err)
		os.Exit(1)
	}
	if flagPrintConfig {
		fmt.Println(cfgPath)
		return
	}

	if err := run(cfg, flagStateDir, flagInsecureHost); err != nil {
		fmt.Fprintln(os.Stderr, "itmux:", err)
		os.Exit(1)
	}
}

func run(cfg *Config, stateDir string, insecureHostKeys bool) error {
	if stateDir == "" {
		d, err := blobstore.DefaultDir()
		if err != nil {
			return fmt.Errorf("resolve state dir: %w", err)
		}
		stateDir = d
	}
	blobs, err := blobstore.NewFileStore(stateDir)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	hosts, err := hostprofile.Open(blobs)
	if err != nil {
		return fmt.Errorf("open host profiles: %w", err)
	}
	for _, g := range cfg.Groups {
		_ = hosts.UpsertGroup(hostprofile.Group{
			Name:        g.Name,
			DefaultUser: g.DefaultUser,
			DefaultPort: g.DefaultPort,
			JumpHost:    g.JumpHost,
		})
	}

	keys, err := credential.Open(blobs, credential.DefaultBackend())
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if !insecureHostKeys {
		cb, err := defaultHostKeyCallback()
		if err != nil {
			return fmt.Errorf("load known_hosts: %w", err)
		}
		hostKeyCallback = cb
	}
	transport := sshtransport.New(hostKeyCallback)

	conns := connection.NewManager(transport, osClipboard{})
	for _, p := range hosts.List() {
		conns.AddHost(p)
	}

	m := newModel(cfg, hosts, keys, conns)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
