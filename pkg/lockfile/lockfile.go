// Package lockfile reads the resolved environment description that feeds a
// composition: which realized package outputs to link and at what priority.
package lockfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/flox/flox-sub009/pkg/compose"
	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/flox/flox-sub009/pkg/logging"
	"github.com/flox/flox-sub009/pkg/priority"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Version is the only lock format version understood
const Version = 1

// Lock is a resolved environment
type Lock struct {
	Version  int       `toml:"version" yaml:"version" json:"version"`
	Packages []Package `toml:"packages" yaml:"packages" json:"packages"`
}

// Package is one resolved package with its realized outputs
type Package struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	// Owner groups outputs that may shadow each other without conflict.
	// Defaults to Name.
	Owner string `toml:"owner,omitempty" yaml:"owner,omitempty" json:"owner,omitempty"`
	// System restricts the package to one platform; empty means any
	System   string `toml:"system,omitempty" yaml:"system,omitempty" json:"system,omitempty"`
	Priority *int   `toml:"priority,omitempty" yaml:"priority,omitempty" json:"priority,omitempty"`
	// OutputsToInstall names the outputs linked explicitly. Nil means all.
	// The others are only linked if something propagates them.
	OutputsToInstall []string `toml:"outputs_to_install,omitempty" yaml:"outputs_to_install,omitempty" json:"outputs_to_install,omitempty"`
	Outputs          []Output `toml:"outputs" yaml:"outputs" json:"outputs"`
}

// Output is a realized package output in the store
type Output struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Path string `toml:"path" yaml:"path" json:"path"`
}

// Load reads a lock file, choosing the format by extension
func Load(path string) (*Lock, error) {
	logger := logging.GetLogger("lockfile").With().Str("lockfile", path).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockLoad, "failed to read lock file %s", path)
	}

	lock, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("packages", len(lock.Packages)).Msg("Loaded lock file")
	return lock, nil
}

// Parse decodes lock data in the given format: toml, yaml, yml or json
func Parse(data []byte, format string) (*Lock, error) {
	var lock Lock
	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &lock)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &lock)
	case "json":
		err = json.Unmarshal(data, &lock)
	default:
		return nil, errors.Newf(errors.ErrLockParse, "unsupported lock format %q", format).
			WithDetail("format", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockParse, "failed to parse %s lock", format)
	}

	if err := lock.Validate(); err != nil {
		return nil, err
	}
	return &lock, nil
}

// Validate checks the structure of the lock
func (l *Lock) Validate() error {
	if l.Version != Version {
		return errors.Newf(errors.ErrLockInvalid, "unsupported lock version %d, expected %d", l.Version, Version).
			WithDetail("version", l.Version)
	}

	seen := make(map[string]bool, len(l.Packages))
	for i, pkg := range l.Packages {
		if pkg.Name == "" {
			return errors.Newf(errors.ErrLockInvalid, "package #%d has no name", i+1)
		}
		if seen[pkg.Name] {
			return errors.Newf(errors.ErrLockInvalid, "package %s is listed twice", pkg.Name).
				WithDetail("package", pkg.Name)
		}
		seen[pkg.Name] = true

		if pkg.Priority != nil && *pkg.Priority < 0 {
			return errors.Newf(errors.ErrLockInvalid, "package %s has negative priority %d", pkg.Name, *pkg.Priority).
				WithDetail("package", pkg.Name)
		}
		if len(pkg.Outputs) == 0 {
			return errors.Newf(errors.ErrLockInvalid, "package %s has no outputs", pkg.Name).
				WithDetail("package", pkg.Name)
		}

		outputs := make(map[string]bool, len(pkg.Outputs))
		for _, out := range pkg.Outputs {
			if out.Name == "" || out.Path == "" {
				return errors.Newf(errors.ErrLockInvalid, "package %s has an output without name or path", pkg.Name).
					WithDetail("package", pkg.Name)
			}
			if !filepath.IsAbs(out.Path) {
				return errors.Newf(errors.ErrLockInvalid, "output %s of %s is not an absolute path: %s",
					out.Name, pkg.Name, out.Path).
					WithDetail("package", pkg.Name)
			}
			outputs[out.Name] = true
		}
		for _, name := range pkg.OutputsToInstall {
			if !outputs[name] {
				return errors.Newf(errors.ErrLockInvalid, "package %s installs unknown output %s", pkg.Name, name).
					WithDetail("package", pkg.Name)
			}
		}
	}
	return nil
}

// Contributions turns the packages available on system into composition
// input. Packages pinned to another system are left out; an empty system
// keeps everything.
func (l *Lock) Contributions(system string, defaultPriority int) []compose.Contribution {
	logger := logging.GetLogger("lockfile")
	var contributions []compose.Contribution
	for _, pkg := range l.Packages {
		if system != "" && pkg.System != "" && pkg.System != system {
			logger.Debug().
				Str("package", pkg.Name).
				Str("system", pkg.System).
				Msg("Skipping package for other system")
			continue
		}

		rank := defaultPriority
		if pkg.Priority != nil {
			rank = *pkg.Priority
		}
		owner := pkg.Owner
		if owner == "" {
			owner = pkg.Name
		}

		for i, out := range pkg.Outputs {
			contributions = append(contributions, compose.Contribution{
				SourceRoot: out.Path,
				Included:   pkg.installs(out.Name),
				Priority: priority.Priority{
					Rank:     rank,
					Owner:    owner,
					TieBreak: i,
				},
			})
		}
	}
	return contributions
}

func (p Package) installs(output string) bool {
	if p.OutputsToInstall == nil {
		return true
	}
	for _, name := range p.OutputsToInstall {
		if name == output {
			return true
		}
	}
	return false
}

// PackageNames maps every output path to the name of its package
func (l *Lock) PackageNames() map[string]string {
	names := make(map[string]string)
	for _, pkg := range l.Packages {
		for _, out := range pkg.Outputs {
			names[filepath.Clean(out.Path)] = pkg.Name
		}
	}
	return names
}
