// Package ndikit adapts a real-time network media-transport engine
// (source discovery, frame receive, frame send) for host applications.
// The wire protocol itself lives in the external engine; this module owns
// the shape and validation of every buffer crossing that boundary.
package ndikit

// Version is the module version, overridable at link time.
var Version = "0.2.0"
