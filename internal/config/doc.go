// Package config loads, normalizes, and validates extractor configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLOWDER_KEY and BETYDB_KEY. The resulting Config is built once at startup
// and handed to the pipeline and validator; nothing mutates it afterwards.
package config
