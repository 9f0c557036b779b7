// Package templatecache acquires function templates with graceful
// degradation. A request is served, in order, by the live feed (reusing the
// persisted copy when its version is current), by whatever copy is persisted
// regardless of version, and finally by the bundles embedded in the binary.
// Concurrent requests for the same key share one acquisition.
package templatecache
