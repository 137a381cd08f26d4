// Package staging owns the on-disk lifecycle of job intermediates: preparing
// the output directory and removing scheduled temporary paths.
package staging
