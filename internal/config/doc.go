// Package config resolves albumus settings and project configuration.
//
// Two files matter. The global settings file (settings.json in the app
// directory) records the active project directory and the recent-project
// history; it is loaded and saved through pure functions so no caller keeps
// process-wide state. The project configuration is the shipped default
// config.json shallow-merged with the project's own config.json (or
// config.toml): the override replaces whole top-level keys, it never merges
// nested objects.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and validated, immutable values.
package config
