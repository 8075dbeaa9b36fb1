// Package compose merges a set of prioritized package trees into a single
// destination tree of symlinks.
//
// Every package contributes a realized, read-only source tree. Composition
// walks those trees in a deterministic order and links their entries into
// the destination:
//
//   - A directory contributed by only one package is linked as a whole.
//     It is turned into a real directory ("exploded") the moment a second
//     package contributes below the same path, after which both packages
//     are linked into it entry by entry.
//   - Two packages claiming the same file are resolved by priority.Compare:
//     the lower rank wins, outputs of the same owner fall back to their
//     tie-break, and two owners at the same rank abort the composition with
//     a *ConflictError.
//   - A file and a directory claimed at the same path always abort.
//
// After an explicitly requested package is linked, the package's
// propagation manifests (nix-support/propagated-user-env-packages and
// nix-support/propagated-build-inputs) are read and every listed package is
// linked in later rounds at synthetic ranks starting at the synthetic rank
// floor, so propagated packages never beat explicit ones.
//
// A composition owns its destination exclusively: the destination must be
// empty, and the priority ledger lives only for the duration of one Compose
// call. Callers compose into a fresh temporary directory and publish it
// afterwards (see package publish); a failed composition leaves a partial
// tree that must be discarded.
package compose
