package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beekhof/timekit"
)

// CredentialStore is an interface for saving and loading Timekit credentials.
type CredentialStore interface {
	SaveCredentials(creds timekit.Credentials) error
	LoadCredentials() (*timekit.Credentials, error)
}

// Authenticator is the part of timekit.Client used to log in.
type Authenticator interface {
	Auth(ctx context.Context, email, password string) (*timekit.Response[timekit.User], error)
	SetUser(email, apiToken string)
	User() timekit.Credentials
}

// ErrNoCredentials is returned when a command needs a user and none is stored.
var ErrNoCredentials = errors.New("no stored credentials, run the auth command first")

// FileCredentialStore is a file-based implementation of credential storage.
type FileCredentialStore struct {
	Path string
}

// NewFileCredentialStore creates a new FileCredentialStore with the given path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{Path: path}
}

// SaveCredentials writes creds to store.Path, readable only by the owner.
func (store *FileCredentialStore) SaveCredentials(creds timekit.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.Path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err := os.WriteFile(store.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// LoadCredentials loads credentials from the file at store.Path.
// Returns nil, nil if the file does not exist (no error).
func (store *FileCredentialStore) LoadCredentials() (*timekit.Credentials, error) {
	data, err := os.ReadFile(store.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds timekit.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// Restore applies stored credentials to client. It returns ErrNoCredentials
// when the store is empty.
func Restore(client Authenticator, store CredentialStore) error {
	creds, err := store.LoadCredentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil || creds.IsZero() {
		return ErrNoCredentials
	}

	client.SetUser(creds.Email, creds.APIToken)
	return nil
}

// Login exchanges email and password for an API token and saves the
// resulting credentials.
func Login(ctx context.Context, client Authenticator, store CredentialStore, email, password string) (*timekit.User, error) {
	resp, err := client.Auth(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := store.SaveCredentials(client.User()); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	return &resp.Data, nil
}

// LoginWithReader prompts for the password on out and reads it from reader
// before logging in.
func LoginWithReader(ctx context.Context, client Authenticator, store CredentialStore, email string, reader io.Reader, out io.Writer) (*timekit.User, error) {
	fmt.Fprintf(out, "Password for %s: ", email)

	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return nil, fmt.Errorf("no password entered")
	}

	return Login(ctx, client, store, email, password)
}
