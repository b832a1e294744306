// Package walker enumerates the pages and directories of a static site tree.
//
// Traversal is read-only and prunes ignored directories before descending,
// so vendored or generated content is never scanned. A root that does not
// exist or cannot be read fails the walk; there is no best-effort mode.
//
// The walker works on an fs.FS. The CLI passes os.DirFS(root); tests pass
// testing/fstest.MapFS trees. Paths are always root-relative and
// slash-separated.
package walker
