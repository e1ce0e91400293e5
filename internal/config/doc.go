// Package config provides the configuration of a crawl run: defaults, the
// optional .wikicorpus YAML file, validation and XDG directory lookup.
package config
