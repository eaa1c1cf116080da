package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestLocateCmdRejectsNonIntegerLine(t *testing.T) {
	cmd := newLocateCmdInternal(nil)
	cmd.SetArgs([]string{"main.go", "not-a-number", "marker"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "line must be an integer") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "line must be an integer")
	}
}
