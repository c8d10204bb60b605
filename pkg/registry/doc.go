// Package registry keeps the ordered set of report categories seen by the
// viewer and whether each one is shown.
//
// The synchronizer adds a category the first time an event carries it; the
// user toggles flags. Unknown names are treated as enabled so a new category
// is visible before anyone has looked at it.
package registry
