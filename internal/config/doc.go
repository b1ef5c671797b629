// Package config loads and validates the cinedex configuration file.
//
// Configuration lives in a TOML file resolved from --config, then
// ~/.config/cinedex/config.toml, then ./cinedex.toml. Defaults cover every
// field so a missing file still yields a usable config for read-only
// commands; Validate rejects anything a mutating run requires but lacks
// (the upstream API credential foremost). Paths are tilde-expanded and
// normalized before use.
package config
