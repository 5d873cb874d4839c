// Package extract turns raw page HTML into the immutable Snapshot of
// signals the analysis agents score: metadata, visible text, headings,
// images, link graph, and the boolean quality markers (SSL, viewport,
// structured data, and so on).
package extract
