// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML file
//  3. Environment variables (RUDIS_ prefix, "__" between nesting levels)
//  4. Explicit overrides passed to LoadMap, such as command-line arguments
//
// A Watcher reports changes to the configuration file so callers can
// re-read settings that are safe to change at runtime.
package confloader
