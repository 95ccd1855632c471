// Package confloader loads cfkv configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables with the CFKV_ prefix
//  3. YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Environment variables separate nesting levels with a double
// underscore, so key names may keep their single underscores:
// CFKV_STORAGE__DATA_DIR sets storage.data_dir.
//
// Watcher reports changes of individual configuration files so long-lived
// commands can reload them.
package confloader
