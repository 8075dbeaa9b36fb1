package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flox/flox-sub009/pkg/filesystem"
	"github.com/flox/flox-sub009/pkg/priority"
	"github.com/flox/flox-sub009/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLinker() *linker {
	return &linker{
		fs:       filesystem.NewOS(),
		logger:   zerolog.Nop(),
		ledger:   newLedger(),
		excluder: newExcluder(nil),
	}
}

func TestLinkerReplacesLowerPriorityLeaf(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	low := env.AddPackage("low", testutil.FileTree{"tool": "low"})
	high := env.AddPackage("high", testutil.FileTree{"tool": "high"})
	require.NoError(t, os.Mkdir(env.OutDir, 0755))

	l := newTestLinker()
	require.NoError(t, l.link(env.OutDir, low, "", priority.Priority{Rank: 9, Owner: "low"}))
	require.NoError(t, l.link(env.OutDir, high, "", priority.Priority{Rank: 1, Owner: "high"}))

	testutil.AssertSymlinkTarget(t, filepath.Join(env.OutDir, "tool"), filepath.Join(high, "tool"))
	assert.Equal(t, 1, l.ledger.links)
	got, ok := l.ledger.lookup("tool")
	require.True(t, ok)
	assert.Equal(t, "high", got.Owner)
}

func TestLinkerTieBreakIsOrderIndependent(t *testing.T) {
	orders := map[string][]int{
		"lower tie break first":  {0, 1},
		"higher tie break first": {1, 0},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t)
			outputs := []string{
				env.AddPackage("out", testutil.FileTree{"share": testutil.FileTree{"x": "out"}}),
				env.AddPackage("doc", testutil.FileTree{"share": testutil.FileTree{"x": "doc"}}),
			}
			require.NoError(t, os.Mkdir(env.OutDir, 0755))

			l := newTestLinker()
			for _, tieBreak := range order {
				prio := priority.Priority{Rank: 5, Owner: "pkg", TieBreak: tieBreak}
				require.NoError(t, l.link(env.OutDir, outputs[tieBreak], "", prio))
			}

			testutil.AssertSymlinkTarget(t,
				filepath.Join(env.OutDir, "share", "x"),
				filepath.Join(outputs[0], "share", "x"))
		})
	}
}

func TestLinkerRelinkingIdenticalContributionIsNoop(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	pkg := env.AddPackage("pkg", testutil.FileTree{"tool": "x", "bin": testutil.FileTree{"y": "y"}})
	require.NoError(t, os.Mkdir(env.OutDir, 0755))

	l := newTestLinker()
	prio := priority.Priority{Rank: 0, Owner: "pkg"}
	require.NoError(t, l.link(env.OutDir, pkg, "", prio))
	require.NoError(t, l.link(env.OutDir, pkg, "", prio))

	assert.Equal(t, 2, l.ledger.links)
	testutil.AssertSymlinkTarget(t, filepath.Join(env.OutDir, "tool"), filepath.Join(pkg, "tool"))
}

func TestLinkerExplosionKeepsPreviousPriority(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	first := env.AddPackage("first", testutil.FileTree{"bin": testutil.FileTree{"tool": "first"}})
	second := env.AddPackage("second", testutil.FileTree{"bin": testutil.FileTree{"other": "second"}})
	third := env.AddPackage("third", testutil.FileTree{"bin": testutil.FileTree{"tool": "third"}})
	require.NoError(t, os.Mkdir(env.OutDir, 0755))

	l := newTestLinker()
	require.NoError(t, l.link(env.OutDir, first, "", priority.Priority{Rank: 7, Owner: "first"}))
	require.NoError(t, l.link(env.OutDir, second, "", priority.Priority{Rank: 1, Owner: "second"}))
	require.NoError(t, l.link(env.OutDir, third, "", priority.Priority{Rank: 3, Owner: "third"}))

	// bin/tool was relinked at first's rank 7, so third's rank 3 wins it
	testutil.AssertSymlinkTarget(t, filepath.Join(env.OutDir, "bin", "tool"), filepath.Join(third, "bin", "tool"))
	_, ok := l.ledger.lookup("bin")
	assert.False(t, ok, "exploded directories are not links")
}

func TestExcluder(t *testing.T) {
	e := newExcluder([]string{"README", "  ", "/share/doc/"})

	tests := []struct {
		rel  string
		want bool
	}{
		{"bin/tool", false},
		{".hidden", true},
		{"share/.keep", true},
		{"nix-support", true},
		{"nix-support/setup-hook", false},
		{"propagated-build-inputs", true},
		{"propagated-user-env-packages", true},
		{"lib/propagated-build-inputs", false},
		{"lib/perl5/perllocal.pod", true},
		{"log", true},
		{"share/log", true},
		{"manifest.nix", true},
		{"manifest.json", true},
		{"share/ext/manifest.json", false},
		{"share/manifest.nix", false},
		{"share/info/dir", true},
		{"info/dir", true},
		{"share/info/dirs", false},
		{"share/dir", false},
		{"README", true},
		{"share/logs", false},
		{"share/doc", true},
		{"usr/share/doc", true},
		{"share/docs", false},
		{"doc", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, e.excluded(tt.rel, filepath.Base(tt.rel)))
		})
	}
}

func TestClassify(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	root := env.AddPackage("pkg", testutil.FileTree{
		"file":     "x",
		"dir":      testutil.FileTree{},
		"to-dir":   testutil.Link{Target: "dir"},
		"to-file":  testutil.Link{Target: "file"},
		"dangling": testutil.Link{Target: "nowhere"},
	})
	fsys := filesystem.NewOS()

	sources := map[string]entryKind{
		"file":     entryFile,
		"dir":      entryDirectory,
		"to-dir":   entryDirectory,
		"to-file":  entryFile,
		"dangling": entryMissing,
		"absent":   entryMissing,
	}
	for name, want := range sources {
		got, err := classifySource(fsys, filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, want, got, "source %s", name)
	}

	dests := map[string]entryKind{
		"file":     entryFile,
		"dir":      entryDirectory,
		"to-dir":   entryLinkToDirectory,
		"to-file":  entryLinkToFile,
		"dangling": entryLinkToFile,
		"absent":   entryMissing,
	}
	for name, want := range dests {
		got, err := classifyDest(fsys, filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, want, got, "dest %s", name)
	}

	got, err := classifySource(fsys, filepath.Join(root, "file", "below"))
	require.NoError(t, err)
	assert.Equal(t, entryMissing, got, "paths below a file are absent")
}
