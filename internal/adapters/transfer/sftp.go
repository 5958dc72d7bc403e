// Package transfer backs sftp_operation nodes with SSH file transfer
// sessions. Host keys are not pinned; workflow targets are reached over
// trusted networks.
package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type Factory struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewFactory(timeout time.Duration, logger *slog.Logger) *Factory {
	return &Factory{
		timeout: timeout,
		logger:  logger.With("component", "transfer"),
	}
}

func (f *Factory) Connect(host string, port int, cred *domain.Credential) (ports.TransferSession, error) {
	auth, err := authMethods(cred)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            cred.Field("username", ""),
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         f.timeout,
	}

	conn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", host, port), sshConfig)
	if err != nil {
		return nil, err
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	f.logger.Debug("sftp session opened", "host", host, "port", port)
	return &session{conn: conn, client: client}, nil
}

func authMethods(cred *domain.Credential) ([]ssh.AuthMethod, error) {
	if key := cred.Field("privateKey", ""); key != "" {
		signer, err := ssh.ParsePrivateKey([]byte(key))
		if err != nil {
			return nil, domain.NewConfigurationError("invalid sftp private key", map[string]interface{}{"credential_id": cred.ID})
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	if password := cred.Field("password", ""); password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}, nil
	}

	return nil, domain.NewConfigurationError("sftp credential needs a password or privateKey", map[string]interface{}{"credential_id": cred.ID})
}

type session struct {
	conn   *ssh.Client
	client *sftp.Client
}

func (s *session) List(dir string) ([]string, error) {
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *session) Upload(remotePath string, content []byte) error {
	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if err := s.client.MkdirAll(dir); err != nil {
			return err
		}
	}

	file, err := s.client.Create(remotePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(content)
	return err
}

func (s *session) Download(remotePath string) ([]byte, error) {
	file, err := s.client.Open(remotePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func (s *session) Delete(remotePath string) error {
	return s.client.Remove(remotePath)
}

func (s *session) Close() error {
	clientErr := s.client.Close()
	connErr := s.conn.Close()
	if clientErr != nil {
		return clientErr
	}
	return connErr
}
