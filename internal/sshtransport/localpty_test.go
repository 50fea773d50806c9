package sshtransport

import (
	"bufio"
	"context"
	"testing"
	"time"

	"itmux/pkg/connection"
)

func TestLocalPTYTransport_DialRunsCommand(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var tr LocalPTYTransport
	stream, err := tr.Dial(ctx, "unused", 0, connection.Credential{}, "echo hello")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	if !scanner.Scan() {
		t.Fatalf("expected output line, got none (err=%v)", scanner.Err())
	}
	if got := scanner.Text(); got != "hello" {
		t.Fatalf("output = %q, want %q", got, "hello")
	}
}
