package compose

import (
	"path/filepath"
	"strings"

	"github.com/flox/flox-sub009/pkg/errors"
)

// PropagationManifests are read from every linked package, relative to its
// source root. Each lists whitespace-separated package roots.
var PropagationManifests = []string{
	filepath.Join("nix-support", "propagated-user-env-packages"),
	filepath.Join("nix-support", "propagated-build-inputs"),
}

// propagated returns the package roots a package propagates, in manifest
// order. Missing manifests are not an error.
func (c *Composer) propagated(srcRoot string) ([]string, error) {
	var roots []string
	for _, manifest := range PropagationManifests {
		manifestPath := filepath.Join(srcRoot, manifest)
		data, err := c.fs.ReadFile(manifestPath)
		if err != nil {
			if isAbsent(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", manifestPath)
		}
		for _, root := range strings.Fields(string(data)) {
			if !filepath.IsAbs(root) {
				c.logger.Warn().
					Str("manifest", manifestPath).
					Str("propagated", root).
					Msg("Ignoring propagated package that is not an absolute path")
				continue
			}
			roots = append(roots, filepath.Clean(root))
		}
	}
	return roots, nil
}
