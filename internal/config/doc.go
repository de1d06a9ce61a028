// Package config loads kmodaudit configuration from local and global YAML
// files. CLI code applies precedence (flags > local > global) when mapping
// these values onto an audit run.
package config
