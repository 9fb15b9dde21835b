package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_noArgsShowsHelp(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{})
	if err := root.Execute(); err != nil {
		t.Fatalf("bare invocation should print help, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("help output missing usage:\n%s", out.String())
	}
}

func TestRootCmd_unknownCommandShowsHelp(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"frobnicate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("unknown command should fall through to help, got %v", err)
	}
	if !strings.Contains(out.String(), "save-sparse") {
		t.Errorf("help output should list subcommands:\n%s", out.String())
	}
}

func TestRootCmd_version(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("version output = %q, want it to contain %q", out.String(), version)
	}
}
