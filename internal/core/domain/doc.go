// Package domain contains the core types of the extraction engine:
// extraction results, configuration, and the error taxonomy shared by
// the pipeline, the plugin registry, and the host-facing boundary.
package domain
