// Package driven defines the interfaces the extraction core depends on:
// plugin capability contracts (OCR backends, post-processors, validators,
// document extractors), the result cache, and the external command runner.
// Implementations live under internal/plugins, internal/extractors,
// internal/ocr and internal/cache.
package driven
