package compose

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/flox/flox-sub009/pkg/config"
	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/flox/flox-sub009/pkg/filesystem"
	"github.com/flox/flox-sub009/pkg/logging"
	"github.com/flox/flox-sub009/pkg/priority"
	"github.com/flox/flox-sub009/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultSyntheticRankFloor is the first rank handed to propagated
// packages. Explicit contributions must rank below it.
const DefaultSyntheticRankFloor = 1000

// Composer merges package trees into a destination directory
type Composer struct {
	fs             types.FS
	logger         zerolog.Logger
	syntheticFloor int
	extraIgnore    []string
}

// Option configures a Composer
type Option func(*Composer)

// WithFS sets the filesystem used for all reads and writes
func WithFS(fsys types.FS) Option {
	return func(c *Composer) { c.fs = fsys }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// WithSyntheticRankFloor sets the first rank given to propagated packages
func WithSyntheticRankFloor(floor int) Option {
	return func(c *Composer) { c.syntheticFloor = floor }
}

// WithExtraIgnore adds entry names that are never linked
func WithExtraIgnore(names ...string) Option {
	return func(c *Composer) { c.extraIgnore = append(c.extraIgnore, names...) }
}

// New creates a Composer. The rank floor and extra ignored names default
// to the global configuration.
func New(opts ...Option) *Composer {
	cfg := config.GetCompose()
	c := &Composer{
		fs:             filesystem.NewOS(),
		logger:         logging.GetLogger("compose"),
		syntheticFloor: cfg.SyntheticRankFloor,
		extraIgnore:    append([]string(nil), cfg.ExtraIgnore...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose links contributions into dstDir with a default Composer
func Compose(dstDir string, contributions []Contribution, opts ...Option) (Result, error) {
	return New(opts...).Compose(dstDir, contributions)
}

// composition is the state of one Compose call
type composition struct {
	*Composer
	linker  *linker
	dstDir  string
	done    map[string]struct{}
	pending map[string]struct{}
	result  Result
}

// Compose links every included contribution into dstDir, followed by the
// packages they propagate. dstDir must be empty or absent. The first
// conflict or I/O failure aborts the composition and leaves dstDir
// partially populated.
func (c *Composer) Compose(dstDir string, contributions []Contribution) (Result, error) {
	logger := c.logger.With().Str("dest", dstDir).Logger()
	defer logging.LogOperationStart(logger, "compose")()

	normalized := make([]Contribution, 0, len(contributions))
	for _, contribution := range contributions {
		normalized = append(normalized, normalize(contribution))
	}
	if err := c.validate(normalized); err != nil {
		return Result{}, err
	}
	if err := c.prepareDestination(dstDir); err != nil {
		return Result{}, err
	}

	state := &composition{
		Composer: c,
		linker: &linker{
			fs:       c.fs,
			logger:   logger,
			ledger:   newLedger(),
			excluder: newExcluder(c.extraIgnore),
		},
		dstDir:  dstDir,
		done:    make(map[string]struct{}),
		pending: make(map[string]struct{}),
	}

	for _, contribution := range sortContributions(normalized) {
		if !contribution.Included {
			continue
		}
		linked, err := state.addPackage(contribution.SourceRoot, contribution.Priority)
		if err != nil {
			return Result{}, err
		}
		if linked {
			state.result.Packages = append(state.result.Packages, contribution.SourceRoot)
		}
	}

	counter := c.syntheticFloor
	for len(state.pending) > 0 {
		round := make([]string, 0, len(state.pending))
		for root := range state.pending {
			round = append(round, root)
		}
		sort.Strings(round)
		state.pending = make(map[string]struct{})

		for _, root := range round {
			prio := priority.Priority{Rank: counter, Owner: root}
			counter++
			linked, err := state.addPackage(root, prio)
			if err != nil {
				return Result{}, err
			}
			if linked {
				state.result.Propagated = append(state.result.Propagated, root)
			}
		}
	}

	state.result.Links = state.linker.ledger.links
	logger.Info().
		Int("links", state.result.Links).
		Int("packages", len(state.result.Packages)).
		Int("propagated", len(state.result.Propagated)).
		Msg("Composition finished")
	return state.result, nil
}

// addPackage links one package root unless it was already visited, then
// queues the packages it propagates. It reports false for visited or
// unlistable roots.
func (s *composition) addPackage(root string, prio priority.Priority) (bool, error) {
	if _, ok := s.done[root]; ok {
		return false, nil
	}
	s.done[root] = struct{}{}

	s.linker.logger.Debug().
		Str("package", root).
		Stringer("priority", prio).
		Msg("Linking package")
	listed, err := s.linker.linkTree(s.dstDir, root, "", prio)
	if err != nil {
		if conflict, ok := AsConflict(err); ok {
			conflict.Record.IncomingRoot = root
			conflict.Record.ExistingRoot = s.rootOf(conflict.Record.Existing)
		}
		return false, err
	}
	if !listed {
		return false, nil
	}

	roots, err := s.propagated(root)
	if err != nil {
		return false, err
	}
	for _, propagated := range roots {
		if _, ok := s.done[propagated]; ok {
			continue
		}
		s.linker.logger.Debug().
			Str("package", root).
			Str("propagated", propagated).
			Msg("Queued propagated package")
		s.pending[propagated] = struct{}{}
	}
	return true, nil
}

// rootOf returns the longest visited package root containing path
func (s *composition) rootOf(path string) string {
	best := ""
	for root := range s.done {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

func (c *Composer) validate(contributions []Contribution) error {
	if c.syntheticFloor <= 0 {
		return errors.Newf(errors.ErrInvalidInput, "synthetic rank floor must be positive, got %d", c.syntheticFloor)
	}
	for _, contribution := range contributions {
		p := contribution.Priority
		switch {
		case contribution.SourceRoot == "" || contribution.SourceRoot == ".":
			return errors.New(errors.ErrInvalidInput, "contribution has no source root")
		case !filepath.IsAbs(contribution.SourceRoot):
			return errors.Newf(errors.ErrInvalidInput, "source root %s is not absolute", contribution.SourceRoot).
				WithDetail("source", contribution.SourceRoot)
		case p.Rank < 0 || p.TieBreak < 0:
			return errors.Newf(errors.ErrInvalidInput, "negative priority %s for %s", p, contribution.SourceRoot).
				WithDetail("source", contribution.SourceRoot)
		case contribution.Included && p.Rank >= c.syntheticFloor:
			return errors.Newf(errors.ErrRankReserved,
				"priority %d of %s is reserved for propagated packages; use a value below %d",
				p.Rank, contribution.SourceRoot, c.syntheticFloor).
				WithDetail("source", contribution.SourceRoot).
				WithDetail("rank", p.Rank).
				WithDetail("floor", c.syntheticFloor)
		}
	}
	return nil
}

// prepareDestination creates dstDir, which must not already hold entries
func (c *Composer) prepareDestination(dstDir string) error {
	info, err := c.fs.Lstat(dstDir)
	switch {
	case err != nil && isAbsent(err):
		if err := c.fs.MkdirAll(dstDir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create destination %s", dstDir)
		}
		return nil
	case err != nil:
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat destination %s", dstDir)
	case !info.IsDir():
		return errors.Newf(errors.ErrInvalidInput, "destination %s is not a directory", dstDir)
	}

	names, err := c.fs.ReadDirNames(dstDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to list destination %s", dstDir)
	}
	if len(names) > 0 {
		return errors.Newf(errors.ErrInvalidInput, "destination %s is not empty", dstDir)
	}
	return nil
}
