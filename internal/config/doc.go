// Package config loads, normalizes, and validates jellyclean configuration.
//
// No file is required: the zero-argument invocation runs on repository
// defaults. When a file exists it is TOML, looked up at the --config path,
// then ~/.config/jellyclean/config.toml, then ./jellyclean.toml. Paths are
// tilde-expanded and made absolute so downstream packages never see "~".
package config
