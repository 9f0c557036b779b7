// Package store provides the persistent key/value store used by the template
// cache. Values are opaque strings (raw template JSON and version markers).
// A JSON document under the config directory is the default backend; Redis
// can be configured when several machines should share one cache.
package store
