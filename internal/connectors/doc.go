// Package connectors provides the sources files are ingested from. The
// filesystem connector lists supported files below a folder and watches
// folders for new ones.
package connectors
