// Package version reports build information for the wirekit binary.
package version
