package main

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyBytes(t *testing.T) {
	cases := []struct {
		name string
		in   tea.KeyMsg
		want []byte
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []byte("\r")},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, []byte("\t")},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, []byte{0x7f}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, []byte{0x03}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, []byte{0x1b}},
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, []byte("x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := keyBytes(tc.in)
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("keyBytes(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
