package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
)

// settingsFile is the schema of monorun.toml.
type settingsFile struct {
	PackageManager string `toml:"package_manager"`
	Concurrency    int    `toml:"concurrency"`
	Cache          struct {
		Enabled *bool    `toml:"enabled"`
		OutDir  string   `toml:"out_dir"`
		Include []string `toml:"include"`
		Exclude []string `toml:"exclude"`
	} `toml:"cache"`
}

// applySettings merges the optional settings file at the workspace root into repo.
// A missing file is not an error; a file that does not decode is.
func (r *WorkspaceResolver) applySettings(repo *domain.Monorepo) error {
	path := filepath.Join(repo.Root, domain.SettingsFileName)

	var sf settingsFile
	md, err := toml.DecodeFile(path, &sf)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidSettings.Error()), "path", path)
	}

	for _, key := range md.Undecoded() {
		r.Logger.Warn(fmt.Sprintf("unknown key %q in %s", key.String(), path))
	}

	if sf.PackageManager != "" {
		pm, err := domain.ParsePackageManager(sf.PackageManager)
		if err != nil {
			return zerr.With(err, "path", path)
		}
		repo.PackageManager = pm
	}

	if sf.Concurrency < 0 {
		return zerr.With(zerr.With(domain.ErrInvalidSettings, "path", path), "concurrency", sf.Concurrency)
	}
	repo.Settings.Concurrency = sf.Concurrency

	cache := &repo.Settings.Cache
	if sf.Cache.Enabled != nil {
		cache.Enabled = *sf.Cache.Enabled
	}
	if sf.Cache.OutDir != "" {
		if err := validateOutDir(sf.Cache.OutDir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidSettings.Error()), "path", path)
		}
		cache.OutDir = sf.Cache.OutDir
	}
	if sf.Cache.Include != nil {
		cache.Include = sf.Cache.Include
	}
	cache.Exclude = append(cache.Exclude, sf.Cache.Exclude...)

	return nil
}
