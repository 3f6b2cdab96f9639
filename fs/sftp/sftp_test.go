package sftp

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"io/fs"
	"net"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/jmgilman/storage/fs/core"
	"github.com/jmgilman/storage/fs/fstest"
	"github.com/jmgilman/storage/storage"
)

// newPipeFS connects a client to an in-memory request server over a pipe.
func newPipeFS(t *testing.T, root string) *SFTPFS {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	server := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go func() {
		_ = server.Serve()
	}()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	require.NoError(t, err)

	s := New(client, root)
	t.Cleanup(func() {
		_ = s.Close()
		_ = server.Close()
	})
	return s
}

func TestSFTPConformance(t *testing.T) {
	fstest.TestSuiteWithConfig(t, func() core.FS {
		return newPipeFS(t, "/")
	}, fstest.POSIXTestConfig())
}

func TestSFTPProvider(t *testing.T) {
	fstest.TestProvider(t, func() storage.Provider {
		return storage.NewFSProvider(newPipeFS(t, "/"))
	})
}

func TestRooted(t *testing.T) {
	outer := newPipeFS(t, "/")
	require.NoError(t, outer.MkdirAll("srv/data", 0o755))

	s := New(outer.client, "/srv/data/")
	assert.Equal(t, "/srv/data", s.Root())

	require.NoError(t, s.WriteFile("/a.txt", []byte("a"), 0o644))
	require.NoError(t, s.WriteFile("../../escape.txt", []byte("b"), 0o644))

	data, err := outer.ReadFile("srv/data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	ok, err := outer.Exists("escape.txt")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = outer.Exists("srv/data/escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileName(t *testing.T) {
	s := newPipeFS(t, "/")

	f, err := s.Create("docs/../note.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs/../note.txt", f.Name())
	_, err = f.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := s.ReadFile("note.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestRemoveRoot(t *testing.T) {
	s := newPipeFS(t, "/")
	assert.ErrorIs(t, s.Remove("/"), fs.ErrInvalid)
	assert.ErrorIs(t, s.RemoveAll("."), fs.ErrInvalid)
	assert.NoError(t, s.RemoveAll("missing"))
	assert.NoError(t, s.MkdirAll("/", 0o755))
	assert.Equal(t, core.FSTypeRemote, s.Type())
}

func TestRenameMissingKeepsTarget(t *testing.T) {
	s := newPipeFS(t, "/")
	require.NoError(t, s.WriteFile("target.txt", []byte("keep"), 0o644))

	assert.ErrorIs(t, s.Rename("missing.txt", "target.txt"), fs.ErrNotExist)

	data, err := s.ReadFile("target.txt")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestConfigValidation(t *testing.T) {
	valid := Config{Addr: "localhost:22", User: "u", Password: "p", InsecureIgnoreHostKey: true}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing address", func(c *Config) { c.Addr = "" }, "address is required"},
		{"missing user", func(c *Config) { c.User = "" }, "user is required"},
		{"missing auth", func(c *Config) { c.Password = "" }, "password or private key is required"},
		{"missing host key", func(c *Config) { c.InsecureIgnoreHostKey = false }, "host key is required"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientConfig(t *testing.T) {
	t.Run("bad host key", func(t *testing.T) {
		cfg := Config{Addr: "x:22", User: "u", Password: "p", HostKey: "not a key"}
		_, err := cfg.clientConfig()
		assert.ErrorContains(t, err, "parse host key")
	})

	t.Run("bad private key", func(t *testing.T) {
		cfg := Config{Addr: "x:22", User: "u", PrivateKey: []byte("junk"), InsecureIgnoreHostKey: true}
		_, err := cfg.clientConfig()
		assert.ErrorContains(t, err, "parse private key")
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := Config{Addr: "x:22", User: "u", Password: "p", InsecureIgnoreHostKey: true}
		cc, err := cfg.clientConfig()
		require.NoError(t, err)
		assert.Equal(t, "u", cc.User)
		assert.Equal(t, defaultTimeout, cc.Timeout)
		assert.Len(t, cc.Auth, 1)
	})
}

// startSSHServer serves the sftp subsystem from an in-memory handler and
// returns the listen address and the host key in authorized_keys format.
func startSSHServer(t *testing.T, password string) (string, string) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) != password {
				return nil, fs.ErrPermission
			}
			return nil, nil
		},
	}
	config.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go serveSSH(conn, config)
		}
	}()

	return listener.Addr().String(), string(ssh.MarshalAuthorizedKey(signer.PublicKey()))
}

func serveSSH(conn net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			return
		}

		go func() {
			for req := range requests {
				ok := req.Type == "subsystem" && subsystem(req.Payload) == "sftp"
				_ = req.Reply(ok, nil)
				if ok {
					server := sftp.NewRequestServer(channel, sftp.InMemHandler())
					_ = server.Serve()
					_ = channel.Close()
				}
			}
		}()
	}
}

func subsystem(payload []byte) string {
	if len(payload) < 4 {
		return ""
	}
	n := binary.BigEndian.Uint32(payload)
	if int(n) > len(payload)-4 {
		return ""
	}
	return string(payload[4 : 4+n])
}

func TestDial(t *testing.T) {
	addr, hostKey := startSSHServer(t, "secret")

	t.Run("pinned host key", func(t *testing.T) {
		s, err := Dial(Config{Addr: addr, User: "u", Password: "secret", HostKey: hostKey, Root: "/"})
		require.NoError(t, err)
		defer func() {
			_ = s.Close()
		}()

		require.NoError(t, s.WriteFile("hello.txt", []byte("over ssh"), 0o644))
		data, err := s.ReadFile("hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "over ssh", string(data))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := Dial(Config{Addr: addr, User: "u", Password: "nope", HostKey: hostKey})
		assert.ErrorContains(t, err, "failed to dial")
	})

	t.Run("wrong host key", func(t *testing.T) {
		_, other, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		otherSigner, err := ssh.NewSignerFromKey(other)
		require.NoError(t, err)

		_, err = Dial(Config{
			Addr:     addr,
			User:     "u",
			Password: "secret",
			HostKey:  string(ssh.MarshalAuthorizedKey(otherSigner.PublicKey())),
		})
		assert.ErrorContains(t, err, "failed to dial")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Dial(Config{})
		assert.ErrorContains(t, err, "invalid config")
	})
}
