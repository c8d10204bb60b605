// Package poll implements the auto-refresh timer of the viewer.
//
// The timer is restart-only: each expiry fires once, and the next one is
// armed by the fetch cycle when it completes, so a slow server stretches the
// polling period instead of stacking requests.
package poll
