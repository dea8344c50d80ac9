// Package resultstore keeps search results on disk so a repeated search over the same
// profile and parameters is answered without running it again.
//
// Records are keyed by the profile digest plus the search parameters and live in a
// bolt database under the cache directory.
package resultstore
