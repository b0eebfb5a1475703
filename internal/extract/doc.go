// Package extract pulls reconnaissance-relevant structures out of fetched
// pages. The HTML extractor parses the document for links, forms, titles and
// script references, and the JavaScript analyzer scans script bodies for API
// endpoints, WebSocket URLs and dynamically constructed URLs.
//
// Extraction is read-only over the page content and never follows URLs
// itself; everything discovered is handed back as candidates for the
// scheduler and aggregator to filter.
package extract
