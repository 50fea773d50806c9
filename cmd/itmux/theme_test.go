package main

import (
	"testing"

	"itmux/pkg/term"
)

func TestLipglossColor(t *testing.T) {
	cases := []struct {
		name string
		in   term.Color
		want lipglossColorWant
	}{
		{"default", term.Color{Kind: term.ColorDefault}, lipglossColorWant{ok: false}},
		{"basic", term.Basic(3), lipglossColorWant{ok: true, val: "3"}},
		{"bright", term.Bright(3), lipglossColorWant{ok: true, val: "11"}},
		{"indexed", term.Indexed(200), lipglossColorWant{ok: true, val: "200"}},
		{"rgb", term.RGB(0, 128, 255), lipglossColorWant{ok: true, val: "#0080ff"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := lipglossColor(tc.in)
			if ok != tc.want.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.want.ok)
			}
			if ok && string(got) != tc.want.val {
				t.Fatalf("color = %q, want %q", got, tc.want.val)
			}
		})
	}
}

type lipglossColorWant struct {
	ok  bool
	val string
}

func TestHexColor(t *testing.T) {
	if got := hexColor(0, 128, 255); got != "#0080ff" {
		t.Fatalf("hexColor(0,128,255) = %q, want #0080ff", got)
	}
	if got := hexColor(255, 255, 255); got != "#ffffff" {
		t.Fatalf("hexColor(255,255,255) = %q, want #ffffff", got)
	}
}

func TestRenderRow_GroupsRunsOfIdenticalStyle(t *testing.T) {
	row := []term.Cell{
		{Rune: 'a', Style: term.Style{}},
		{Rune: 'b', Style: term.Style{}},
		{Rune: 'c', Style: term.Style{Bold: true}},
	}
	out := renderRow(row)
	if out == "" {
		t.Fatalf("renderRow returned empty string for non-empty row")
	}
}

func TestRenderRow_Empty(t *testing.T) {
	if got := renderRow(nil); got != "" {
		t.Fatalf("renderRow(nil) = %q, want empty", got)
	}
}
