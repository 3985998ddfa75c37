// Package export renders conversations into serialized blobs.
//
// Rendering is a pure function of the record sequence and metadata: the
// engine holds no state between calls, performs no I/O, and may be invoked
// concurrently without coordination. An export either fully succeeds or
// fails with an error and no partial output.
//
// # Key Types
//
//   - Format: Export format enumeration (txt, json, csv, md, html)
//   - Renderer: Pure (conversation, statistics) -> blob function
//   - Result: Serialized content with suggested filename and MIME type
//   - ValidationError: Malformed record or unsupported format
//   - RenderError: Internal renderer failure with record index
//
// # Usage
//
// Export a conversation:
//
//	result, err := export.Export(conv, export.FormatJSON)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(result.Filename, result.Content, 0644)
//
// The caller owns persistence; the engine never writes to disk.
package export
