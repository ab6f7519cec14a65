// Package segment is the inverted index behind geo fields.
//
// A Writer analyzes JSON documents with the analyzers configured per field,
// appends the emitted terms to roaring posting lists and keeps the analyzer's
// stored bytes in a compressed column. Segment is the immutable result a
// Writer hands out; it implements Reader and is safe for concurrent use.
//
//	w, err := segment.NewWriter([]segment.FieldConfig{
//		{Name: "location", Kind: analysis.KindGeoJSON},
//	})
//	id, err := w.Add(segment.Document(`{"location": {"type": "Point", "coordinates": [37.6, 55.7]}}`))
//	seg := w.Flush()
//	docs := seg.Postings("location", term)
package segment
