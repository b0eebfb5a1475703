// Package config holds the webrecon run configuration.
//
// The configuration is populated from CLI flags and an optional YAML file
// (.webrecon) that carries per-site credentials (cookies and headers) so
// that authenticated areas can be crawled without hardcoding secrets in
// shell history. Configuration is passed through the application by
// dependency injection; there is no package-level state.
package config
