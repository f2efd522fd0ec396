package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/kelmerpassos/ipet-api/pkg/metrics"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// Transfer error kinds.
const (
	ErrKindConnectFailed = "connect_failed"
	ErrKindAuthFailed    = "auth_failed"
	ErrKindCopyFailed    = "copy_failed"
	ErrKindTimeout       = "timeout"
)

// TransferError describes a failed remote file transfer.
type TransferError struct {
	Kind string
	Host string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: host %s path %s: %v", e.Kind, e.Host, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Config holds the remote endpoint settings for the offline base transfer.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	ConnectTimeout time.Duration
	RemotePath     string
	LocalDir       string
}

// Fetcher downloads the offline base file over SFTP.
type Fetcher struct {
	config Config
	logger ectologger.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(config Config, logger ectologger.Logger) *Fetcher {
	return &Fetcher{
		config: config,
		logger: logger,
	}
}

// LocalTarget returns the path the remote file is downloaded to.
func (f *Fetcher) LocalTarget() string {
	return filepath.Join(f.config.LocalDir, filepath.Base(f.config.RemotePath))
}

// Fetch downloads the remote file to the local target and returns its path.
// The remote host key is not verified; the source host is assumed trusted.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "Fetcher.Fetch")
	defer span.End()

	start := time.Now()
	addr := net.JoinHostPort(f.config.Host, fmt.Sprintf("%d", f.config.Port))

	f.logger.WithContext(ctx).WithFields(map[string]any{
		"host": f.config.Host,
		"path": f.config.RemotePath,
	}).Info("Fetching offline base")

	sshConfig := &ssh.ClientConfig{
		User: f.config.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(f.config.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         f.config.ConnectTimeout,
	}

	conn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return "", f.classifyDialError(err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return "", &TransferError{Kind: ErrKindConnectFailed, Host: f.config.Host, Path: f.config.RemotePath, Err: err}
	}
	defer client.Close()

	remote, err := client.Open(f.config.RemotePath)
	if err != nil {
		return "", &TransferError{Kind: ErrKindCopyFailed, Host: f.config.Host, Path: f.config.RemotePath, Err: err}
	}
	defer remote.Close()

	target := f.LocalTarget()
	local, err := os.Create(target)
	if err != nil {
		return "", &TransferError{Kind: ErrKindCopyFailed, Host: f.config.Host, Path: f.config.RemotePath, Err: err}
	}
	defer local.Close()

	written, err := io.Copy(local, remote)
	if err != nil {
		return "", &TransferError{Kind: ErrKindCopyFailed, Host: f.config.Host, Path: f.config.RemotePath, Err: err}
	}

	elapsed := time.Since(start)
	metrics.FetchDuration.Observe(elapsed.Seconds())

	f.logger.WithContext(ctx).WithFields(map[string]any{
		"host":     f.config.Host,
		"path":     f.config.RemotePath,
		"bytes":    written,
		"duration": elapsed.String(),
	}).Info("Fetched offline base")

	return target, nil
}

func (f *Fetcher) classifyDialError(err error) *TransferError {
	kind := ErrKindConnectFailed
	var netErr net.Error
	switch {
	case strings.Contains(err.Error(), "unable to authenticate"):
		kind = ErrKindAuthFailed
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ErrKindTimeout
	}
	return &TransferError{Kind: kind, Host: f.config.Host, Path: f.config.RemotePath, Err: err}
}
