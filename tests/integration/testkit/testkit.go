package testkit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sha1n/mcp-statute-server/internal/app"
	"github.com/spf13/pflag"
)

// Service represents a test service that can be started and stopped
type Service interface {
	Start() (map[string]any, error)
	Stop() error
	GetName() string
}

// TestEnvContext provides access to properties collected during environment startup
type TestEnvContext interface {
	GetProperties() map[string]any
	GetProperty(name string) (any, bool)
}

// TestEnv manages the lifecycle of test services
type TestEnv interface {
	Start() (map[string]any, error)
	Stop() error
	GetContext() TestEnvContext
}

type testEnvContextImpl struct {
	properties map[string]any
}

func (c *testEnvContextImpl) GetProperties() map[string]any {
	return c.properties
}

func (c *testEnvContextImpl) GetProperty(name string) (any, bool) {
	val, ok := c.properties[name]
	return val, ok
}

type testEnvImpl struct {
	services []Service
	context  *testEnvContextImpl
}

// NewTestEnv creates a new test environment with the given services
func NewTestEnv(services ...Service) TestEnv {
	return &testEnvImpl{
		services: services,
		context:  &testEnvContextImpl{properties: make(map[string]any)},
	}
}

func (e *testEnvImpl) Start() (map[string]any, error) {
	for _, s := range e.services {
		props, err := s.Start()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.GetName(), err)
		}
		for k, v := range props {
			e.context.properties[k] = v
		}
	}
	return e.context.properties, nil
}

func (e *testEnvImpl) Stop() error {
	var errs []error
	// Stop in reverse order
	for i := len(e.services) - 1; i >= 0; i-- {
		if err := e.services[i].Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *testEnvImpl) GetContext() TestEnvContext {
	return e.context
}

// GetFreePort returns a free port from the kernel
func GetFreePort() (int, error) {
	return getFreePortWithAddr("localhost:0")
}

// MustGetFreePort returns a free port or fails the test
func MustGetFreePort(t testing.TB) int {
	t.Helper()
	port, err := GetFreePort()
	if err != nil {
		t.Fatalf("Failed to get free port: %v", err)
	}
	return port
}

func getFreePortWithAddr(addrStr string) (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", addrStr)
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// WriteStatute writes content to a statute file under a fresh temp dir and returns its path.
func WriteStatute(t testing.TB, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statute.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write statute: %v", err)
	}
	return path
}

// FlagOptions configures NewTestFlags
type FlagOptions struct {
	Port        int      // Uses free port if 0
	Transport   string   // Defaults to "sse"
	AuthType    string   // Defaults to "none"
	Host        string   // Defaults to "localhost"
	StatutePath string   // Left unset if empty
	APIKeys     []string // Only applied with AuthType "apikey"
	Watch       bool
}

// NewTestFlags creates a configured pflag.FlagSet for testing
func NewTestFlags(t testing.TB, opts *FlagOptions) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	app.RegisterFlags(flags)

	o := FlagOptions{Transport: "sse", AuthType: "none", Host: "localhost"}
	if opts != nil {
		if opts.Port != 0 {
			o.Port = opts.Port
		}
		if opts.Transport != "" {
			o.Transport = opts.Transport
		}
		if opts.AuthType != "" {
			o.AuthType = opts.AuthType
		}
		if opts.Host != "" {
			o.Host = opts.Host
		}
		o.StatutePath = opts.StatutePath
		o.APIKeys = opts.APIKeys
		o.Watch = opts.Watch
	}

	if o.Port == 0 {
		o.Port = MustGetFreePort(t)
	}

	_ = flags.Set("port", fmt.Sprintf("%d", o.Port))
	_ = flags.Set("transport", o.Transport)
	_ = flags.Set("auth-type", o.AuthType)
	_ = flags.Set("host", o.Host)
	if o.StatutePath != "" {
		_ = flags.Set("statute-path", o.StatutePath)
	}
	if len(o.APIKeys) > 0 {
		_ = flags.Set("auth-api-keys", strings.Join(o.APIKeys, ","))
	}
	if o.Watch {
		_ = flags.Set("statute-watch", "true")
		_ = flags.Set("statute-watch-debounce", "50ms")
	}

	return flags
}

// ServerService runs the full SSE server in the background.
// Start returns once /ready answers 200 and publishes "base_url".
type ServerService struct {
	Flags        *pflag.FlagSet
	ReadyTimeout time.Duration // Defaults to 10s

	cancel context.CancelFunc
	done   chan error
}

// NewServerService creates a server service over flags built by NewTestFlags.
func NewServerService(flags *pflag.FlagSet) *ServerService {
	return &ServerService{Flags: flags}
}

func (s *ServerService) GetName() string {
	return "statute-mcp"
}

func (s *ServerService) Start() (map[string]any, error) {
	host, _ := s.Flags.GetString("host")
	port, _ := s.Flags.GetInt("port")
	baseURL := fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprintf("%d", port)))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() {
		s.done <- app.RunWithDeps(ctx, app.DefaultRunParams(), s.Flags, "test")
	}()

	timeout := s.ReadyTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if err := waitReady(baseURL, timeout, s.done); err != nil {
		cancel()
		return nil, err
	}
	return map[string]any{"base_url": baseURL}, nil
}

func (s *ServerService) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case err := <-s.done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-time.After(10 * time.Second):
		return errors.New("server did not stop in time")
	}
}

func waitReady(baseURL string, timeout time.Duration, done <-chan error) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case err := <-done:
			return fmt.Errorf("server exited before becoming ready: %w", err)
		default:
		}

		resp, err := client.Get(baseURL + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %s", timeout)
}
