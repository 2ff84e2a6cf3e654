// Package discovery finds existing game installs by probing well-known
// directories and, on Windows, the uninstall registry.
package discovery

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// Discovery implements ports.Discovery.
type Discovery struct {
	fs       ports.FileSystem
	roots    []string
	platform bool
	registry bool
	log      zerolog.Logger
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Discovery) {
		d.log = l
	}
}

// WithoutPlatformProbes limits the search to the configured roots.
func WithoutPlatformProbes() Option {
	return func(d *Discovery) {
		d.platform = false
		d.registry = false
	}
}

// New creates a Discovery that probes extraRoots before the platform roots.
func New(fsys ports.FileSystem, extraRoots []string, opts ...Option) *Discovery {
	d := &Discovery{
		fs:       fsys,
		roots:    extraRoots,
		platform: true,
		registry: true,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Candidates returns existing directories named product under every probed
// root, followed by registry install locations whose display name contains
// product. Duplicates are dropped, order is probe order.
func (d *Discovery) Candidates(product string) ([]string, error) {
	product = strings.TrimSpace(product)
	if product == "" || strings.ContainsAny(product, `/\`) {
		return nil, apperr.Newf(apperr.InvalidName, "invalid product name %q", product)
	}

	roots := append([]string{}, d.roots...)
	if d.platform {
		roots = append(roots, platformRoots()...)
	}

	seen := make(map[string]bool)
	found := []string{}
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return
		}
		key := strings.ToLower(abs)
		if seen[key] {
			return
		}
		seen[key] = true
		found = append(found, abs)
	}

	for _, root := range roots {
		if root == "" {
			continue
		}
		p := filepath.Join(root, product)
		info, err := d.fs.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		d.log.Debug().Str("product", product).Str("path", p).Msg("found install candidate")
		add(p)
	}

	if d.registry {
		paths, err := registryCandidates(product)
		if err != nil {
			d.log.Warn().Err(err).Str("product", product).Msg("registry probe failed")
		}
		for _, p := range paths {
			if info, err := d.fs.Stat(p); err == nil && info.IsDir() {
				add(p)
			}
		}
	}

	return found, nil
}

// Compile-time check that Discovery implements ports.Discovery.
var _ ports.Discovery = (*Discovery)(nil)
