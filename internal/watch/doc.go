// Package watch re-triggers site checks when the site tree changes.
//
// A Watcher registers every non-ignored directory of the site with
// fsnotify, collects relevant changes and emits one Trigger per quiet
// period. Directories created while watching are registered as they appear.
package watch
