// Package fetch retrieves pages for the crawl engine.
//
// Two interchangeable implementations of the Fetcher capability exist:
// HTTPFetcher performs a plain GET through net/http, and RenderFetcher
// drives a headless Chrome session via chromedp so that client-rendered
// markup is visible to extraction. The engine selects one at startup from
// configuration; nothing downstream branches on the fetch mechanism.
//
// Both implementations inject pre-supplied credentials (cookie and extra
// headers) and cap response bodies. Failures are classified as network or
// timeout errors so that the report can distinguish a dead host from a
// slow one.
package fetch
