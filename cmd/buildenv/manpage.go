package buildenv

import (
	"io"

	"github.com/flox/flox-sub009/internal/version"
	"github.com/spf13/cobra/doc"
)

// WriteManPage writes the buildenv(1) man page
func WriteManPage(w io.Writer) error {
	header := &doc.GenManHeader{
		Title:   "BUILDENV",
		Section: "1",
		Source:  "buildenv " + version.Version,
		Manual:  "buildenv manual",
	}
	return doc.GenMan(NewRootCmd(), header, w)
}
