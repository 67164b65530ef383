package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables holding the note.com login.
const (
	EnvEmail    = "NOTE_EMAIL"
	EnvPassword = "NOTE_PASSWORD"
)

// Credentials is the login used when the browser session is not yet
// authenticated. Its String form is redacted so it can never leak into logs.
type Credentials struct {
	Email    string
	Password string
}

// LoadCredentials loads envFile (if it exists) into the process environment and
// reads the credential variables. Variables already set in the environment win
// over the file.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	return Credentials{
		Email:    os.Getenv(EnvEmail),
		Password: os.Getenv(EnvPassword),
	}, nil
}

// Empty reports whether either half of the login is missing.
func (c Credentials) Empty() bool {
	return c.Email == "" || c.Password == ""
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Email: %s, Password: %s}", redact(c.Email), redact(c.Password))
}

// GoString keeps %#v redacted as well.
func (c Credentials) GoString() string {
	return c.String()
}

func redact(v string) string {
	if v == "" {
		return "<unset>"
	}
	return "<redacted>"
}
