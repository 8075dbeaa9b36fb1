// Package ui renders composition outcomes for people: the summary of a
// successful run and readable conflict reports.
package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/flox/flox-sub009/pkg/compose"
)

// Printer writes styled messages to one writer
type Printer struct {
	w      io.Writer
	styles styles
	names  map[string]string
}

// NewPrinter returns a Printer for w. names maps package roots to display
// names; paths under an unknown root are shown as they are.
func NewPrinter(w io.Writer, names map[string]string) *Printer {
	return &Printer{
		w:      w,
		styles: newStyles(lipgloss.NewRenderer(w)),
		names:  names,
	}
}

// PackageName returns the display name of the package a source path
// belongs to, matching the longest known root
func (p *Printer) PackageName(path string) string {
	return PackageName(p.names, path)
}

// PackageName resolves path against names, see Printer.PackageName
func PackageName(names map[string]string, path string) string {
	path = filepath.Clean(path)
	best, bestLen := path, -1
	for root, name := range names {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = name, len(root)
		}
	}
	return best
}

// ConflictMessage describes a conflict in terms of package names
func ConflictMessage(conflict *compose.ConflictError, name func(string) string) string {
	r := conflict.Record
	existing, incoming := name(orPath(r.ExistingRoot, r.Existing)), name(orPath(r.IncomingRoot, r.Incoming))
	if conflict.Kind == compose.TypeConflict {
		return fmt.Sprintf("conflict between packages '%s' and '%s' at '%s': one provides a directory and the other a file",
			existing, incoming, r.Path)
	}
	return fmt.Sprintf("conflict between packages '%s' and '%s' at '%s' — resolve by lowering the priority number of the preferred package below '%d'",
		existing, incoming, r.Path, r.Rank)
}

// orPath prefers a package root over the source path inside it
func orPath(root, path string) string {
	if root != "" {
		return root
	}
	return path
}

// Summary reports a successful composition
func (p *Printer) Summary(result compose.Result, dest string) {
	fmt.Fprintf(p.w, "%s %d entries into %s\n",
		p.styles.success.Render("Linked"), result.Links, p.styles.path.Render(dest))
	if len(result.Propagated) > 0 {
		names := make([]string, 0, len(result.Propagated))
		for _, root := range result.Propagated {
			names = append(names, p.PackageName(root))
		}
		fmt.Fprintln(p.w, p.styles.muted.Render("propagated: "+strings.Join(names, ", ")))
	}
}

// Error reports err. Conflicts name both packages and their sources.
func (p *Printer) Error(err error) {
	if conflict, ok := compose.AsConflict(err); ok {
		r := conflict.Record
		fmt.Fprintf(p.w, "%s %s\n", p.styles.err.Render("error:"), ConflictMessage(conflict, p.PackageName))
		fmt.Fprintf(p.w, "  %s %s\n", p.styles.pkg.Render(p.PackageName(r.Existing)), p.styles.path.Render(r.Existing))
		fmt.Fprintf(p.w, "  %s %s\n", p.styles.pkg.Render(p.PackageName(r.Incoming)), p.styles.path.Render(r.Incoming))
		return
	}
	fmt.Fprintf(p.w, "%s %v\n", p.styles.err.Render("error:"), err)
}
