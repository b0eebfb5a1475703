// Package main provides the entry point for the webrecon CLI.
//
// webrecon is a permissioned reconnaissance crawler for authorized security
// testing. It maps a target's attack surface (pages, forms, API endpoints,
// scripts, subdomains, hidden files) without ever mutating the target.
//
// Usage:
//
//	webrecon crawl https://target.example.com
//
// See --help for all available options.
package main

// main is the entry point for webrecon.
func main() {
	Execute()
}
