/*
Package contracts stores signed lease documents on the local filesystem.

LAYOUT:
  One PDF per tenant, named contrat_<tenantCode>.pdf, in a single
  directory. The tenant row keeps the original upload filename; the file
  on disk is always addressed by tenant code.

LIFECYCLE:
  Upload replaces any previous document. Lease termination and the
  portfolio reset remove files; a missing file is not an error there.
*/
package contracts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a tenant has no stored document.
	ErrNotFound = errors.New("contract not found")

	// ErrInvalidCode is returned for tenant codes that are unsafe as file names.
	ErrInvalidCode = errors.New("invalid tenant code")
)

var safeCode = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Dir is a contract store rooted at one directory.
type Dir struct {
	root string
}

// New creates the directory if needed.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create contracts dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) path(tenantCode string) (string, error) {
	if !safeCode.MatchString(tenantCode) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, tenantCode)
	}
	return filepath.Join(d.root, "contrat_"+tenantCode+".pdf"), nil
}

// Save writes the document for a tenant, replacing any previous one. The
// file appears atomically: readers never see a partial upload.
func (d *Dir) Save(tenantCode string, r io.Reader) error {
	dst, err := d.path(tenantCode)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write contract: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write contract: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to store contract: %w", err)
	}
	return nil
}

// Open returns the stored document. The caller closes it.
func (d *Dir) Open(tenantCode string) (*os.File, error) {
	p, err := d.path(tenantCode)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Exists reports whether a document is stored for the tenant.
func (d *Dir) Exists(tenantCode string) bool {
	p, err := d.path(tenantCode)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Remove deletes the tenant's document if there is one.
func (d *Dir) Remove(tenantCode string) error {
	p, err := d.path(tenantCode)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove contract: %w", err)
	}
	return nil
}

// RemoveAll deletes every stored document.
func (d *Dir) RemoveAll() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return fmt.Errorf("failed to list contracts: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "contrat_") {
			continue
		}
		if err := os.Remove(filepath.Join(d.root, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// DownloadName is the filename offered to browsers, e.g. Contrat_Awa_Diop.pdf.
func DownloadName(tenantName string) string {
	if tenantName == "" {
		return "contrat.pdf"
	}
	return "Contrat_" + strings.Join(strings.Fields(tenantName), "_") + ".pdf"
}
