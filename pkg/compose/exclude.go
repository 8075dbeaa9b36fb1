package compose

import "strings"

// rootNames are package bookkeeping entries, skipped only at the top of a
// package tree
var rootNames = []string{
	"nix-support",
	"propagated-build-inputs",
	"propagated-user-env-packages",
	"manifest.nix",
	"manifest.json",
}

// ignoredNames are skipped at any depth
var ignoredNames = []string{
	"perllocal.pod",
	"log",
}

// ignoredSuffixes match against the slash-separated relative path
var ignoredSuffixes = []string{
	"info/dir",
}

type excluder struct {
	rootNames map[string]struct{}
	names     map[string]struct{}
	suffixes  []string
}

func newExcluder(extra []string) excluder {
	e := excluder{
		rootNames: make(map[string]struct{}, len(rootNames)),
		names:     make(map[string]struct{}, len(ignoredNames)+len(extra)),
		suffixes:  append([]string(nil), ignoredSuffixes...),
	}
	for _, name := range rootNames {
		e.rootNames[name] = struct{}{}
	}
	for _, name := range ignoredNames {
		e.names[name] = struct{}{}
	}
	// entries with a slash match relative path suffixes, others names
	for _, name := range extra {
		name = strings.Trim(strings.TrimSpace(name), "/")
		switch {
		case name == "":
		case strings.Contains(name, "/"):
			e.suffixes = append(e.suffixes, name)
		default:
			e.names[name] = struct{}{}
		}
	}
	return e
}

// excluded reports whether the entry called name at relative path rel is
// skipped. Hidden entries always are.
func (e excluder) excluded(rel, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := e.rootNames[name]; ok && rel == name {
		return true
	}
	if _, ok := e.names[name]; ok {
		return true
	}
	for _, suffix := range e.suffixes {
		if rel == suffix || strings.HasSuffix(rel, "/"+suffix) {
			return true
		}
	}
	return false
}
