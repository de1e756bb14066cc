package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	nodesDir   = "nodes"
	tokensDir  = "tokens"
	stagingDir = "nodes.staging"
	retiredDir = "nodes.old"

	artifactExt = ".yaml"
)

// Store is the on-disk home of generated artifacts.
//
// Layout under the root:
//
//	nodes/<name>.yaml  per-node k3s configuration artifact
//	inventory.yaml     aggregate descriptor for the deploy executor
//	tokens/<name>      locally cached join-credential material
//
// The caller owns exclusivity: concurrent reconciliations against the
// same root are undefined.
type Store struct {
	root string
}

// NewStore opens (creating if needed) an artifact store at root.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, nodesDir), filepath.Join(root, tokensDir)} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// ExistingNodes returns the node names that currently have a
// materialized artifact, sorted.
func (s *Store) ExistingNodes() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, nodesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), artifactExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), artifactExt))
	}
	sort.Strings(names)
	return names, nil
}

// ReadNode returns the current artifact bytes for a node, or nil if no
// artifact exists.
func (s *Store) ReadNode(name string) ([]byte, error) {
	data, err := os.ReadFile(s.nodePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact for %s: %w", name, err)
	}
	return data, nil
}

// ReadDescriptor returns the current aggregate descriptor bytes, or nil
// if none has been generated yet.
func (s *Store) ReadDescriptor() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, DescriptorFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return data, nil
}

// Apply replaces the whole artifact set with the given batch using a
// staged-write-then-atomic-swap: every artifact is written to a staging
// directory first, and the live directory is swapped in only after the
// entire batch (descriptor included) has been written successfully.
// A failure partway through leaves the previous artifact tree intact.
func (s *Store) Apply(batch map[string][]byte, descriptor []byte) (err error) {
	staging := filepath.Join(s.root, stagingDir)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0750); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err != nil {
			// Abandon the half-written batch; the live tree was not touched.
			_ = os.RemoveAll(staging)
		}
	}()

	for name, data := range batch {
		if err = os.WriteFile(filepath.Join(staging, name+artifactExt), data, 0640); err != nil {
			return fmt.Errorf("failed to stage artifact for %s: %w", name, err)
		}
	}

	descriptorTmp := filepath.Join(s.root, DescriptorFile+".tmp")
	if err = os.WriteFile(descriptorTmp, descriptor, 0640); err != nil {
		return fmt.Errorf("failed to stage descriptor: %w", err)
	}

	// Swap point: everything below is rename-only.
	live := filepath.Join(s.root, nodesDir)
	retired := filepath.Join(s.root, retiredDir)

	if err = os.RemoveAll(retired); err != nil {
		return fmt.Errorf("failed to clear retired directory: %w", err)
	}
	if err = os.Rename(live, retired); err != nil {
		return fmt.Errorf("failed to retire live artifacts: %w", err)
	}
	if err = os.Rename(staging, live); err != nil {
		// Roll the old tree back so the store stays usable.
		_ = os.Rename(retired, live)
		return fmt.Errorf("failed to swap in staged artifacts: %w", err)
	}
	if err = os.Rename(descriptorTmp, filepath.Join(s.root, DescriptorFile)); err != nil {
		return fmt.Errorf("failed to swap in descriptor: %w", err)
	}

	return os.RemoveAll(retired)
}

// HasToken reports whether join-credential material is cached locally
// for the node.
func (s *Store) HasToken(name string) bool {
	_, err := os.Stat(s.tokenPath(name))
	return err == nil
}

// WriteToken caches join-credential material for a node.
func (s *Store) WriteToken(name string, data []byte) error {
	if err := os.WriteFile(s.tokenPath(name), data, 0600); err != nil {
		return fmt.Errorf("failed to write token for %s: %w", name, err)
	}
	return nil
}

// Tokens returns the node names with locally cached join-credential
// material, sorted.
func (s *Store) Tokens() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, tokensDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// PurgeToken deletes the locally cached join-credential material for a
// node. Purging an absent token is a success.
func (s *Store) PurgeToken(name string) error {
	err := os.Remove(s.tokenPath(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to purge token for %s: %w", name, err)
	}
	return nil
}

func (s *Store) nodePath(name string) string {
	return filepath.Join(s.root, nodesDir, name+artifactExt)
}

func (s *Store) tokenPath(name string) string {
	return filepath.Join(s.root, tokensDir, name)
}
