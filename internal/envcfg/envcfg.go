// Package envcfg resolves the Postgres connection pgtc introspects
// against: DATABASE_URL from the process environment, falling back to a
// .env file in the working directory. It intentionally does not use
// spf13/viper — viper's .env handling doesn't match the shell-style
// quoting and comment semantics this package implements, and pulling in
// viper's whole config-source stack (flags, remote providers, live
// watching) for one string would be pure overhead.
package envcfg

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/riftdata/pgtc/internal/pgerr"
)

// DefaultDotEnvFile is the .env filename Load looks for when DATABASE_URL
// isn't already set in the environment.
const DefaultDotEnvFile = ".env"

// Config is the resolved connection target.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Address returns the "host:port" pair pgwire.Connect dials.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load resolves DATABASE_URL, preferring the real process environment and
// falling back to dotEnvPath (typically ".env") only for variables the
// process environment doesn't already define.
func Load(dotEnvPath string) (*Config, error) {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		vars, err := readDotEnv(dotEnvPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: err}
		}
		raw = vars["DATABASE_URL"]
	}
	if raw == "" {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("not set in the environment or %s", dotEnvPath)}
	}
	return ParseDatabaseURL(raw)
}

// ParseDatabaseURL parses a "postgres(ql)?://user[:password]@host[:port]/database[?sslmode=...]" URL.
func ParseDatabaseURL(raw string) (*Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("parsing URL: %w", err)}
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("unsupported scheme %q, want postgres:// or postgresql://", u.Scheme)}
	}
	if u.Hostname() == "" {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("missing host")}
	}

	port := 5432
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("invalid port %q", p)}
		}
		port = n
	}

	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("missing database name")}
	}

	user := ""
	password := ""
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	if user == "" {
		return nil, &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("missing user")}
	}

	return &Config{
		Host:     u.Hostname(),
		Port:     port,
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  u.Query().Get("sslmode"),
	}, nil
}

// readDotEnv parses a shell-style KEY=VALUE file: blank lines and lines
// starting with "#" are ignored, values may be wrapped in single or
// double quotes, and a leading "export " on a line is stripped so
// `export DATABASE_URL=...` files load the same as plain ones.
func readDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("%s:%d: expected KEY=VALUE, got %q", path, lineNum, line)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		vars[key] = unquote(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	// An unquoted value may still carry an inline "# comment" suffix.
	if idx := strings.Index(v, " #"); idx >= 0 {
		return strings.TrimSpace(v[:idx])
	}
	return v
}
