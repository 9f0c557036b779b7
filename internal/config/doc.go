// Package config manages user-level settings stored at ~/.funcscaffold/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the template feed URL, the request timeout, and the persistent cache backend
// used by the template cache.
package config
