// Package console implements the remote console channel as a fixed,
// registered command set. Incoming text is parsed into a command name and
// arguments; it is never evaluated as code.
package console

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// CommandFunc handles one console command. Output is sent back over the
// console channel; a returned error is sent back as its text.
type CommandFunc func(args []string) (string, error)

// Shell is a minimal command interpreter with a few built-ins. Callers
// register additional commands before wiring the shell into the session.
type Shell struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
	started  time.Time
}

func NewShell() *Shell {
	s := &Shell{
		commands: make(map[string]CommandFunc),
		started:  time.Now(),
	}
	s.Register("help", s.help)
	s.Register("echo", func(args []string) (string, error) {
		return strings.Join(args, " "), nil
	})
	s.Register("uptime", func(args []string) (string, error) {
		return time.Since(s.started).Round(time.Second).String(), nil
	})
	return s
}

// Register stores or overwrites a command handler.
func (s *Shell) Register(name string, fn CommandFunc) {
	s.mu.Lock()
	s.commands[name] = fn
	s.mu.Unlock()
}

// Execute parses one command line and runs its handler.
func (s *Shell) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	s.mu.RLock()
	fn, ok := s.commands[fields[0]]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return fn(fields[1:])
}

func (s *Shell) help(args []string) (string, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return "commands: " + strings.Join(names, " "), nil
}
