// Package imaging turns captured rasters into the compressed bytes handed to
// callers.
//
// Every screenshot leaves the server as a JPEG at a fixed quality of 60. That
// setting keeps a full-screen capture well under the roughly one megabyte that
// MCP clients accept for inline image content.
//
// # Color Handling
//
// The raster is first converted to opaque three-channel color. Alpha is
// dropped rather than composited, so a fully transparent pixel keeps its
// stored color instead of turning black.
//
// # Compression
//
// The standard library JPEG encoder has no separate Huffman optimization
// pass. The fixed quality is the only size control; there is no adaptive
// tuning.
//
// # Inspection
//
// Describe reads only the image header of an encoded buffer and is cheap
// enough to call on every capture for logging.
package imaging
