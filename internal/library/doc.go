// Package library reads iTunes / Music library exports into [models.Track] values and resolves their locations.
//
// # Library.xml
//
// [Parse] and [ParseFile] stream the property-list document produced by "File > Library > Export Library...".
// Only the top-level Tracks dictionary is read; every other key is skipped. Each track dictionary is converted
// into a [models.Track] immediately, so absent or mistyped fields become nil/empty once, here, and nowhere else.
//
//	res, err := library.ParseFile("data/Library.xml")
//	if errors.Is(err, shared.ErrMalformedLibrary) { ... }
//
// # Playlist text exports
//
// [ParseTextExport] reads the tab-separated text produced by "File > Library > Export Playlist...", which iTunes
// writes as UTF-16 with a byte order mark.
//
// # Locations
//
// [Resolver] decodes the stored location (a file:// URL or a plain path) and checks whether the file exists,
// caching the result on the track. Undecodable locations and filesystem errors leave the track's status unknown
// rather than missing.
package library
