// Package feed reads the template release feed: a JSON document mapping
// runtime tags to release versions and releases to the URLs of their
// per-schema template documents.
package feed
