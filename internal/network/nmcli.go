package network

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Joiner associates the node with its network.
type Joiner interface {
	Join(ctx context.Context) error
}

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// NMCLIJoiner joins a wireless network through NetworkManager.
type NMCLIJoiner struct {
	SSID       string
	Passphrase string
	Interface  string

	// Run executes nmcli. Nil uses os/exec.
	Run CommandRunner
}

// Join runs `nmcli device wifi connect`. A non-zero exit wraps ErrJoinFailed
// with nmcli's own message.
func (j *NMCLIJoiner) Join(ctx context.Context) error {
	args := []string{"device", "wifi", "connect", j.SSID}
	if j.Passphrase != "" {
		args = append(args, "password", j.Passphrase)
	}
	if j.Interface != "" {
		args = append(args, "ifname", j.Interface)
	}

	run := j.Run
	if run == nil {
		run = execRunner
	}

	out, err := run(ctx, "nmcli", args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrJoinFailed, j.SSID, msg)
	}
	return nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec // fixed binary, args from config
}
