// Package frontier tracks crawl state: which URLs are pending, which have
// been visited, and when the crawl is finished.
//
// The frontier is the single synchronization point between workers. A URL
// is marked visited the moment it is handed out, so no two workers can
// ever fetch the same URL, and depth and page budgets are enforced at
// insertion so the pending queue never holds work that would be discarded.
package frontier
