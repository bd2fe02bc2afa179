// Package config parses the YAML targets file describing remote hosts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Target describes one remote host.
type Target struct {
	// Host is the hostname or IP address.
	Host string `yaml:"host"`

	// Port is the SSH port. Defaults to 22.
	Port int `yaml:"port"`

	// User is the SSH username.
	User string `yaml:"user"`

	// PasswordEnv names an environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`

	// Password is an inline password. PasswordEnv is preferred; inline
	// passwords end up in version control.
	Password string `yaml:"password"`

	// KeepaliveInterval is the liveness probe period in seconds.
	// Defaults to 30.
	KeepaliveInterval int `yaml:"keepalive_interval"`

	// KnownHosts is a path to an OpenSSH known_hosts file. When set,
	// host keys are verified against it; when empty, any host key is
	// accepted.
	KnownHosts string `yaml:"known_hosts"`
}

// Keepalive returns the keepalive interval as a duration.
func (t *Target) Keepalive() time.Duration {
	return time.Duration(t.KeepaliveInterval) * time.Second
}

// ResolvePassword returns the password for the target, reading the
// environment when password_env is set.
func (t *Target) ResolvePassword() (string, error) {
	if t.PasswordEnv != "" {
		pw := os.Getenv(t.PasswordEnv)
		if pw == "" {
			return "", fmt.Errorf("environment variable %s is not set", t.PasswordEnv)
		}
		return pw, nil
	}
	if t.Password != "" {
		return t.Password, nil
	}
	return "", fmt.Errorf("target has no password or password_env")
}

// Validate checks required fields.
func (t *Target) Validate() error {
	if t.Host == "" {
		return fmt.Errorf("host is required")
	}
	if t.User == "" {
		return fmt.Errorf("user is required")
	}
	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("invalid port %d", t.Port)
	}
	return nil
}

// File is a parsed targets file.
type File struct {
	// Targets maps target names to host descriptions.
	Targets map[string]*Target `yaml:"targets"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-"`
}

// Lookup returns the named target.
func (f *File) Lookup(name string) (*Target, error) {
	t, ok := f.Targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}

// ParseFile parses a targets file from a YAML file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}

	f.Path = path
	return f, nil
}

// Parse parses targets from YAML data, applies defaults, and validates
// every target.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined")
	}

	for name, t := range f.Targets {
		if t == nil {
			return nil, fmt.Errorf("target %q: empty definition", name)
		}
		if t.Port == 0 {
			t.Port = 22
		}
		if t.KeepaliveInterval == 0 {
			t.KeepaliveInterval = 30
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("target %q: %w", name, err)
		}
	}

	return &f, nil
}
