// Package preflight provides readiness checks for the external tools and
// filesystem paths that clipper depends on.
//
// The CLI "clipper doctor" command runs RunAll and renders the results; the
// HTTP health endpoint reuses the same checks. Optional checks cover
// capabilities with a fallback, such as the downloader, which can be
// bootstrapped on first use.
package preflight
