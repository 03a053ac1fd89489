// Package files provides discovery of survey export files on disk.
//
// Discovery locates CSV exports in an input directory, either by
// extension or by glob pattern, and returns them in a stable order so
// batch runs are deterministic.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/surveys")
//
//	// Find all CSV exports in the raw directory
//	exports, err := discovery.FindCSVFiles("raw")
//
//	// Find exports matching a pattern
//	waves, err := discovery.FindFilesByPattern("raw", "wave_*.csv")
package files
