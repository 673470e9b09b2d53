// Package file provides the file-based ConfigStore.
//
// The configuration file is TOML (config.toml) or YAML (config.yaml,
// config.yml), chosen by extension. Nested tables are exposed as
// dot-notation keys, so
//
//	[cache]
//	backend = "redis"
//
// is read as "cache.backend". A .env file next to the configuration file is
// loaded into the process environment first, and LITMAPPER_* variables then
// override file values. A double underscore separates sections, so
// LITMAPPER_CACHE__REDIS_URL sets "cache.redis_url".
package file
