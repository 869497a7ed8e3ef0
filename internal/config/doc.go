// Package config loads the service configuration from the `scorigami:` section
// of a YAML file and watches it for changes.
//
// Load applies defaults before validation, so a file containing only the
// section header is a valid configuration pointing at the public score table.
// Watch reloads on write and hands the Live subset (log level and saturation
// skews) to its callback, which re-tunes the logger and rebuilds the board.
// Other edits are logged as needing a restart.
package config
