// If you are AI: This file provides helper functions for building, configuring and running the trinity binary in tests.

package itest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// BuildBinary compiles cmd/trinity into a temporary directory.
func BuildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "trinity")
	out, err := exec.Command("go", "build", "-o", binPath, "../../cmd/trinity").CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return binPath
}

// FreePort returns a TCP port that was free at the time of the call.
func FreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// Ports are the listener ports of one server process.
type Ports struct {
	HTTP   int
	Health int
}

// WriteConfig writes a config file for a process test. Sections in extra are merged
// over the server section built from ports.
func WriteConfig(t *testing.T, ports Ports, extra map[string]any) string {
	t.Helper()
	doc := map[string]any{
		"server": map[string]any{
			"bind_address":     "127.0.0.1",
			"http_port":        ports.HTTP,
			"health_port":      ports.Health,
			"shutdown_timeout": "2s",
		},
		"database": map[string]any{
			"driver": "sqlite",
			"dsn":    filepath.Join(t.TempDir(), "trinity.db"),
		},
		"logging": map[string]any{
			"level":  "warn",
			"format": "console",
		},
	}
	for k, v := range extra {
		doc[k] = v
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}

// StartProcess runs the binary with the given config and arguments.
func StartProcess(ctx context.Context, binPath, configPath string, args ...string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, binPath, append(args, "--config", configPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start server: %w", err)
	}
	return cmd, nil
}

// RunCommand runs a one-shot CLI command and returns its standard output.
func RunCommand(binPath, configPath string, args ...string) (string, error) {
	cmd := exec.Command(binPath, append(args, "--config", configPath)...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%v: %w", args, err)
	}
	return string(out), nil
}

// WaitForHealth waits for the health endpoint to become available.
// Returns an error if the endpoint is not available within the timeout.
func WaitForHealth(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("health endpoint not available after %v", timeout)
}
