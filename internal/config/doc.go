// Package config defines the cfkv configuration structure.
//
// Configuration is loaded by internal/infra/confloader with priority
// flags > env (CFKV_*) > YAML file > Default(). Verify checks a loaded
// configuration and Options turns its storage section into engine
// options.
package config
