package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"tmichat/util"
)

// authMethods lists the credentials offered to the jump host: the key
// file, then the agent, then a password.  With none of them configured
// the running ssh-agent is used.
func authMethods(cfg *SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		signer, err := loadSigner(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", cfg.KeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	implicit := cfg.KeyPath == "" && !cfg.PromptPass && !cfg.UseAgent
	if cfg.UseAgent || implicit {
		signers, err := agentSigners()
		switch {
		case err != nil && implicit:
			return nil, fmt.Errorf("no jump host credentials (%w): use --ssh-key, --ssh-password or --ssh-agent", err)
		case err != nil:
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		methods = append(methods, ssh.PublicKeysCallback(signers))
	}

	if cfg.PromptPass {
		// Asked only if the server gets this far.
		methods = append(methods, ssh.PasswordCallback(func() (string, error) {
			pass, err := util.ReadSecret(fmt.Sprintf("%s@%s password: ", cfg.User, cfg.Host))
			return string(pass), err
		}))
	}
	return methods, nil
}

// loadSigner reads a private key, prompting for its passphrase when it
// is encrypted.
func loadSigner(path string) (ssh.Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(raw)

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return signer, err
	}
	pass, err := util.ReadSecret(fmt.Sprintf("Enter passphrase for %s: ", path))
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKeyWithPassphrase(raw, pass)
}

func agentSigners() (func() ([]ssh.Signer, error), error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, errors.New("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("agent at %s: %w", sock, err)
	}
	return agent.NewClient(conn).Signers, nil
}

// hostKeyCallback verifies the jump host against known_hosts when
// StrictHostKey is set and accepts any key otherwise.
func hostKeyCallback(cfg *SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}

	path := cfg.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}
	return cb, nil
}
