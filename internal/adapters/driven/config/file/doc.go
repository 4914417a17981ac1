// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("server.url") and written back to
// disk as nested tables:
//
//	[server]
//	url = "http://localhost:8000"
package file
