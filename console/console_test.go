package console

import (
	"strings"
	"testing"
)

func TestShell_Echo(t *testing.T) {
	shell := NewShell()

	out, err := shell.Execute("echo hello world")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Expected 'hello world', got %q", out)
	}
}

func TestShell_UnknownCommand(t *testing.T) {
	shell := NewShell()

	_, err := shell.Execute("format c:")
	if err == nil {
		t.Fatal("Expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Unexpected error text: %v", err)
	}
}

func TestShell_EmptyLine(t *testing.T) {
	shell := NewShell()

	out, err := shell.Execute("   ")
	if err != nil {
		t.Errorf("Empty line must not error: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty output, got %q", out)
	}
}

func TestShell_Help(t *testing.T) {
	shell := NewShell()

	out, err := shell.Execute("help")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, name := range []string{"echo", "help", "uptime"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected %q in help output, got %q", name, out)
		}
	}
}

func TestShell_RegisterCustom(t *testing.T) {
	shell := NewShell()
	shell.Register("battery", func(args []string) (string, error) {
		return "87", nil
	})

	out, err := shell.Execute("battery")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "87" {
		t.Errorf("Expected '87', got %q", out)
	}
}

func TestShell_RegisterOverwrites(t *testing.T) {
	shell := NewShell()
	shell.Register("echo", func(args []string) (string, error) {
		return "overridden", nil
	})

	out, _ := shell.Execute("echo anything")
	if out != "overridden" {
		t.Errorf("Expected overridden handler, got %q", out)
	}
}
