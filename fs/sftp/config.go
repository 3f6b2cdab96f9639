// Package sftp provides an SFTP-backed implementation of core.FS.
//
// Names are resolved below a root directory on the server. Renames use the
// posix-rename@openssh.com extension when the server advertises it, so a
// file rename replaces its target like a local rename would. Without the
// extension an existing target file is removed first.
//
// Usage:
//
//	fsys, err := sftp.Dial(sftp.Config{
//	    Addr:     "files.example.com:22",
//	    User:     "deploy",
//	    Password: os.Getenv("SFTP_PASSWORD"),
//	    HostKey:  "ssh-ed25519 AAAA...",
//	    Root:     "/srv/storage",
//	})
//	if err != nil {
//	    return err
//	}
//	defer fsys.Close()
package sftp

import (
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

const defaultTimeout = 10 * time.Second

// Config holds SFTP connection settings.
type Config struct {
	// Addr is the server address as host:port.
	Addr string

	// User is the login name.
	User string

	// Password enables password authentication.
	Password string

	// PrivateKey is a PEM encoded key for public key authentication.
	PrivateKey []byte

	// HostKey pins the server key, in authorized_keys format.
	HostKey string

	// InsecureIgnoreHostKey accepts any server key. Meant for tests.
	InsecureIgnoreHostKey bool

	// Root is the directory the filesystem is rooted at. Defaults to "/".
	Root string

	// Timeout bounds the TCP connect and SSH handshake. Defaults to 10s.
	Timeout time.Duration
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("address is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.Password == "" && len(c.PrivateKey) == 0 {
		return fmt.Errorf("password or private key is required")
	}
	if c.HostKey == "" && !c.InsecureIgnoreHostKey {
		return fmt.Errorf("host key is required unless host key checking is disabled")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// clientConfig builds the SSH client configuration.
func (c *Config) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if len(c.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(c.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if c.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(c.HostKey))
		if err != nil {
			return nil, fmt.Errorf("parse host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(key)
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}
