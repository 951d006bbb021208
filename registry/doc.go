// Package registry holds the table of known transit agencies and the primitives
// that fetch their static schedule archives onto disk.
//
// A Registry is seeded with a built-in set of major US systems, each described by a
// FeedConfig carrying the static archive URL, optional GTFS-Realtime endpoints and a
// geographic bounding box used to pick an agency for a caller's location.
//
// Downloaded archives land in <baseDir>/<code>/gtfs.zip and are unpacked flat
// into the same directory, where the gtfs package reads them.
package registry
