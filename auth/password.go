package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// PasswordEnv is read when the keyring has no entry for the user.
const PasswordEnv = "ARCGIS_PASSWORD"

var (
	keyringGet = keyring.Get
	keyringSet = keyring.Set
)

// Password looks up the user's password in the OS keyring under the given
// service, then in the ARCGIS_PASSWORD environment variable.
func Password(service, username string) (string, error) {
	pw, err := keyringGet(service, username)
	if err == nil && pw != "" {
		return pw, nil
	}
	if env := os.Getenv(PasswordEnv); env != "" {
		return env, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keyring lookup for %s/%s: %w", service, username, err)
	}
	return "", fmt.Errorf("no password for %s in keyring service %q or %s", username, service, PasswordEnv)
}

// SavePassword stores the user's password in the OS keyring under service.
func SavePassword(service, username, password string) error {
	if service == "" || username == "" {
		return errors.New("keyring service and username are required")
	}
	if password == "" {
		return errors.New("empty password")
	}
	if err := keyringSet(service, username, password); err != nil {
		return fmt.Errorf("keyring store for %s/%s: %w", service, username, err)
	}
	return nil
}
