// Package extractors holds the built-in document extractors. They cover
// the common office and text formats; anything else comes from registered
// extractor plugins, which always take precedence over the builtins.
package extractors
