// Package config loads blockforge settings.
//
// Settings are layered, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. Environment variables prefixed BLOCKFORGE_
//
// Recognised keys:
//
//	history.canvas.maxSize     entries kept by a canvas history (100)
//	history.canvas.debounceMs  canvas debounce window in ms (1000)
//	history.schema.maxSize     entries kept by a schema history (50)
//	history.schema.debounceMs  schema debounce window in ms (1500)
//	logging.level              debug, info, warn or error (info)
//	metrics.enabled            export history metrics (false)
//	timeline.format            text, json or cbor (text)
//
// Watch reloads the file when it changes on disk.
package config
