// Package credentials resolves authentication material for git remotes.
//
// Resolution policy follows the conventions of an unattended host: SSH
// remotes are authenticated through the local SSH agent or the default
// key files under the user's .ssh directory, HTTPS remotes through a
// git-credentials store. The resolver only ever reads from disk.
package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gitHttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitSsh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh"
)

var (
	// ErrNoCredentials means the credentials store is missing or holds
	// no entry for the remote's host.
	ErrNoCredentials = errors.New("no credentials available for remote")
	// ErrAuthExhausted means neither the SSH agent nor any default key
	// file produced a usable authentication method.
	ErrAuthExhausted = errors.New("all ssh authentication methods exhausted")
	// ErrUnsupportedScheme is returned for remote URLs that are neither
	// SSH, HTTPS nor local.
	ErrUnsupportedScheme = errors.New("unsupported remote url scheme")
)

// Scheme classifies a remote URL for credential purposes.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeSSH
	SchemeHTTP
	SchemeLocal
)

// user@host:path with no scheme prefix
var scpLikeRe = regexp.MustCompile(`^[^@/]+@[^:/]+:`)

// ClassifyURL determines which authentication family applies to a
// remote URL. Plain filesystem paths and file:// URLs never require
// authentication and classify as SchemeLocal.
func ClassifyURL(remoteURL string) Scheme {
	switch {
	case strings.HasPrefix(remoteURL, "ssh://"):
		return SchemeSSH
	case strings.HasPrefix(remoteURL, "http://"), strings.HasPrefix(remoteURL, "https://"):
		return SchemeHTTP
	case strings.HasPrefix(remoteURL, "file://"):
		return SchemeLocal
	case scpLikeRe.MatchString(remoteURL):
		return SchemeSSH
	case !strings.Contains(remoteURL, "://"):
		// A bare path; the file transport serves it locally.
		return SchemeLocal
	default:
		return SchemeUnknown
	}
}

// Resolver produces authentication material for a remote URL, or
// signals that none is needed or available.
type Resolver interface {
	// Resolve returns an auth method for the remote, nil when the
	// transport needs none, or one of ErrNoCredentials,
	// ErrAuthExhausted, ErrUnsupportedScheme.
	Resolve(remoteURL, usernameHint string) (transport.AuthMethod, error)
}

// LocalResolver resolves credentials from the local host: the SSH
// agent, the default key files and the git-credentials store. All paths
// are fixed at construction so the resolver never consults process
// environment during a sync cycle.
type LocalResolver struct {
	sshDir    string
	storePath string

	// agentAuth is swapped out in tests to simulate a missing agent.
	agentAuth func(user string) (transport.AuthMethod, error)
}

// Default key files, tried in order.
var defaultKeyFiles = []string{"id_rsa", "id_ed25519", "id_ecdsa"}

// NewLocalResolver creates a resolver rooted at the given home
// directory. The SSH keys are expected under <home>/.ssh and the
// credentials store at <home>/.git-credentials.
func NewLocalResolver(homeDir string) *LocalResolver {
	return &LocalResolver{
		sshDir:    filepath.Join(homeDir, ".ssh"),
		storePath: filepath.Join(homeDir, ".git-credentials"),
		agentAuth: sshAgentAuth,
	}
}

// StorePath returns the location of the HTTPS credentials store.
func (r *LocalResolver) StorePath() string {
	return r.storePath
}

func (r *LocalResolver) Resolve(remoteURL, usernameHint string) (transport.AuthMethod, error) {
	switch ClassifyURL(remoteURL) {
	case SchemeSSH:
		user := usernameHint
		if user == "" {
			user = usernameFromURL(remoteURL)
		}
		return r.resolveSSH(user)
	case SchemeHTTP:
		return r.resolveHTTP(remoteURL, usernameHint)
	case SchemeLocal:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, remoteURL)
	}
}

// resolveSSH tries the SSH agent first, then each default key file in
// order. The first method that loads wins.
func (r *LocalResolver) resolveSSH(user string) (transport.AuthMethod, error) {
	if auth, err := r.agentAuth(user); err == nil {
		return auth, nil
	}

	for _, name := range defaultKeyFiles {
		keyPath := filepath.Join(r.sshDir, name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		keys, err := gitSsh.NewPublicKeysFromFile(user, keyPath, "")
		if err != nil {
			continue
		}
		// Unattended host; there is nobody around to confirm a new
		// host key interactively.
		keys.HostKeyCallback = ssh.InsecureIgnoreHostKey()
		return keys, nil
	}

	return nil, fmt.Errorf("%w: no agent and no usable key under %s", ErrAuthExhausted, r.sshDir)
}

// resolveHTTP reads the credentials store as a single whole-file read
// and returns basic auth for the first valid entry matching the
// remote's host.
func (r *LocalResolver) resolveHTTP(remoteURL, usernameHint string) (transport.AuthMethod, error) {
	parsed, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, remoteURL)
	}

	data, err := os.ReadFile(r.storePath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s", ErrNoCredentials, r.storePath)
	}

	cred, ok := lookupHost(data, parsed.Hostname())
	if !ok {
		return nil, fmt.Errorf("%w: no entry for host %s in %s", ErrNoCredentials, parsed.Hostname(), r.storePath)
	}

	username := cred.username
	if usernameHint != "" {
		username = usernameHint
	}
	return &gitHttp.BasicAuth{Username: username, Password: cred.secret}, nil
}

func sshAgentAuth(user string) (transport.AuthMethod, error) {
	auth, err := gitSsh.NewSSHAgentAuth(user)
	if err != nil {
		return nil, err
	}
	auth.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	return auth, nil
}

// usernameFromURL extracts the user part of an SSH remote URL. The
// conventional "git" user is assumed when the URL names none.
func usernameFromURL(remoteURL string) string {
	if strings.HasPrefix(remoteURL, "ssh://") {
		if parsed, err := url.Parse(remoteURL); err == nil && parsed.User != nil {
			if name := parsed.User.Username(); name != "" {
				return name
			}
		}
		return "git"
	}
	if at := strings.Index(remoteURL, "@"); at > 0 {
		return remoteURL[:at]
	}
	return "git"
}
