// Package backup ships template bundles inside the binary so that templates
// are available when neither the feed nor the cache can serve them. Bundles
// live under bundles/<schema>/<release version>/<document>.json.
package backup
