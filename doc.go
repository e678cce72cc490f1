// Package resarc turns id-Tech era binary resource containers into
// validated, navigable, re-encodable entry trees.
//
// A Registry holds an ordered list of format codecs. Open probes each
// codec's signature check against a ByteSource, commits to the first match,
// and decodes the container's directory into an Archive of lazily-loaded
// entries:
//
//	arc, err := resarc.OpenFile("dark.lfd")
//	if err != nil { ... }
//	defer arc.Close()
//	for e := range arc.Entries() {
//		data, err := arc.Read(e) // lazy read from the original source
//		...
//	}
//
// Every offset and length read from a container directory is bounds-checked
// against the source size before it is trusted; a single bad record rejects
// the whole container rather than salvaging a partial tree.
//
// Formats that round-trip (the LFD resource map) re-encode the current tree
// bit-exactly through Archive.Write; formats that do not (BSP textures)
// report ErrUnsupported instead of producing a silently wrong file.
package resarc
