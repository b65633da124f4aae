package config

import (
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
)

// dependencyFields are merged when extracting workspace-internal dependencies.
var dependencyFields = []string{"dependencies", "devDependencies"}

// toolKeys are the recognized options of the tool namespace.
var toolKeys = map[string]bool{
	"cache":   true,
	"outDir":  true,
	"include": true,
	"exclude": true,
}

// decodePackage validates a raw manifest into a Package.
// Shape problems in optional fields are returned as warnings and the default is kept.
// A missing, empty or malformed name is an error: the manifest cannot join the graph.
func decodePackage(dir string, raw map[string]any, base domain.CacheConfig) (domain.Package, []string, error) {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	name, _ := raw["name"].(string)
	if strings.TrimSpace(name) == "" {
		return domain.Package{}, nil, zerr.With(zerr.With(domain.ErrManifestInvalid, "reason", "missing name"), "dir", dir)
	}
	if err := domain.ValidatePackageName(name); err != nil {
		return domain.Package{}, nil, zerr.With(err, "dir", dir)
	}

	pkg := domain.Package{
		Dir:   dir,
		Name:  name,
		Cache: base.Clone(),
	}

	if scripts, ok := raw["scripts"]; ok {
		m, isMap := scripts.(map[string]any)
		switch {
		case !isMap:
			warnf("%s: scripts must be an object", name)
		case m[domain.BuildScriptName] != nil:
			build, isString := m[domain.BuildScriptName].(string)
			if !isString {
				warnf("%s: scripts.build must be a string", name)
			}
			pkg.BuildScript = build
		}
	}

	deps := make(map[string]bool)
	for _, field := range dependencyFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			warnf("%s: %s must be an object", name, field)
			continue
		}
		for dep, spec := range m {
			s, ok := spec.(string)
			if !ok {
				warnf("%s: %s.%s must be a version string", name, field, dep)
				continue
			}
			if strings.HasPrefix(s, domain.WorkspaceProtocol) {
				deps[dep] = true
			}
		}
	}
	pkg.Dependencies = slices.Sorted(maps.Keys(deps))

	if tool, ok := raw[domain.ToolNamespace]; ok {
		m, ok := tool.(map[string]any)
		if !ok {
			warnf("%s: %q must be an object", name, domain.ToolNamespace)
		} else {
			warnings = append(warnings, decodeCacheConfig(name, m, &pkg.Cache)...)
		}
	}

	return pkg, warnings, nil
}

// decodeCacheConfig overrides each recognized option independently.
func decodeCacheConfig(name string, m map[string]any, cfg *domain.CacheConfig) []string {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, key := range slices.Sorted(maps.Keys(m)) {
		if !toolKeys[key] {
			warnf("%s: unknown %s option %q", name, domain.ToolNamespace, key)
		}
	}

	if v, ok := m["cache"]; ok {
		if b, ok := v.(bool); ok {
			cfg.Enabled = b
		} else {
			warnf("%s: %s.cache must be a boolean", name, domain.ToolNamespace)
		}
	}

	if v, ok := m["outDir"]; ok {
		s, isString := v.(string)
		switch {
		case !isString:
			warnf("%s: %s.outDir must be a string", name, domain.ToolNamespace)
		case validateOutDir(s) != nil:
			warnf("%s: %s.outDir %q must be a relative path inside the package", name, domain.ToolNamespace, s)
		default:
			cfg.OutDir = path.Clean(filepath.ToSlash(s))
		}
	}

	globs := []struct {
		key    string
		target *[]string
	}{
		{key: "include", target: &cfg.Include},
		{key: "exclude", target: &cfg.Exclude},
	}
	for _, g := range globs {
		key, target := g.key, g.target
		v, ok := m[key]
		if !ok {
			continue
		}
		list, ok := stringList(v)
		if !ok {
			warnf("%s: %s.%s must be a list of strings", name, domain.ToolNamespace, key)
			continue
		}
		*target = list
	}

	return warnings
}

// validateOutDir rejects output directories that would make restore touch anything outside the package.
func validateOutDir(dir string) error {
	clean := path.Clean(filepath.ToSlash(dir))
	if clean == "." || path.IsAbs(clean) || filepath.IsAbs(dir) || clean == ".." || strings.HasPrefix(clean, "../") {
		return zerr.With(zerr.New("output directory must stay inside the package"), "out_dir", dir)
	}
	return nil
}
