package discover

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Built-in wordlists. These are the baseline lists shipped with the tool;
// a file path supplied in configuration replaces them entirely.
var defaultSubdomainWords = []string{
	"www", "mail", "ftp", "admin", "blog", "dev", "test", "staging",
	"api", "cdn", "static", "assets", "img", "images", "media",
	"mobile", "m", "app", "apps", "web", "www2", "ns1", "ns2",
	"dns", "dns1", "dns2", "smtp", "pop", "imap", "webmail",
	"support", "help", "kb", "wiki", "forum", "community",
	"shop", "store", "cart", "checkout", "payment", "billing",
	"secure", "ssl", "vpn", "remote", "ssh", "telnet",
	"monitor", "status", "health", "metrics", "stats",
	"backup", "archive", "old", "legacy", "beta", "alpha",
	"demo", "sandbox", "playground", "lab", "research",
	"corp", "internal", "intranet", "portal", "gateway",
	"proxy", "cache", "loadbalancer", "lb", "router",
	"firewall", "fw", "dmz", "ext", "external", "public",
}

var defaultEndpointWords = []string{
	"api", "api/v1", "api/v2", "api/v3", "rest", "rest/v1", "rest/v2",
	"graphql", "swagger", "swagger.json", "openapi", "openapi.json",
	"docs", "documentation", "redoc", "api-docs", "api/docs",
	"users", "user", "auth", "login", "logout", "register", "signup",
	"admin", "administrator", "manage", "management", "dashboard",
	"profile", "account", "settings", "config", "configuration",
	"posts", "articles", "blog", "news",
	"products", "items", "catalog", "store",
	"orders", "cart", "checkout", "payment", "billing",
	"files", "upload", "download", "media", "images",
	"search", "query", "filter",
	"admin/api", "admin/users", "admin/settings", "admin/dashboard",
	"system", "system/api", "system/users", "system/settings",
	"dev", "development", "test", "testing", "staging", "beta",
	"debug", "console", "logs", "error",
	"auth/api", "auth/login", "auth/logout", "auth/register",
	"oauth", "oauth2", "sso", "saml", "jwt", "token",
	"data", "database", "db", "cache",
	"storage", "backup", "export", "import",
	"monitor", "health", "status", "ping",
	"metrics", "analytics", "stats", "report",
	"mail", "email", "notification", "webhook",
	"message", "chat", "support", "help", "contact",
	"robots.txt", "sitemap.xml", "favicon.ico",
	"manifest.json", "service-worker.js", "sw.js",
	"v1", "v2", "v3", "latest", "current",
	"public", "private", "internal", "partner",
	"query", "mutation", "schema",
	"ws", "websocket", "socket", "stream", "live",
	"mobile", "app",
	"callback", "redirect", "oauth/callback",
	"phpmyadmin", "adminer", "phpinfo", "info",
}

var defaultHiddenFileWords = []string{
	".git", ".git/config", ".git/HEAD", ".git/index", ".git/logs/HEAD",
	".svn", ".svn/entries", ".svn/wc.db",
	".hg", ".hg/hgrc",
	".env", ".env.local", ".env.development", ".env.production",
	".env.backup", ".env.old", ".env.bak",
	"config.php", "config.ini", "config.json", "config.xml",
	"settings.php", "settings.ini", "settings.json",
	"database.yml", "database.json",
	"application.yml", "application.json",
	"backup", "backup.zip", "backup.tar.gz",
	"backup.sql", "backup.db", "backup.bak",
	"old", "tmp", "temp", "cache", "logs", "log",
	".htaccess", ".htpasswd", ".htaccess.bak",
	"web.config", "web.config.bak",
	"debug", "debug.php", "debug.log",
	"test", "test.php", "test.html",
	"info.php", "phpinfo.php",
	".vscode", ".vscode/settings.json",
	".idea", ".idea/workspace.xml",
	".DS_Store", "Thumbs.db",
	".bash_history", ".bashrc",
	".ssh", ".ssh/config", ".ssh/id_rsa", ".ssh/authorized_keys",
	"database.sql", "dump.sql", "data.sql",
	"wp-config.php", "wp-config.php.bak",
	"configuration.php",
	"composer.json", "composer.lock", "package.json", "package-lock.json",
	"yarn.lock", "Gemfile.lock", "requirements.txt",
	"auth.php", "login.php.bak", "admin.php.bak",
	"swagger.json", "swagger.yaml", "openapi.json", "openapi.yaml",
	"docs", "documentation",
	"access.log", "error.log", "debug.log",
	"admin", "administrator", "manage", "management",
	"system", "internal", "private", "secret", "hidden",
}

// LoadWordlist reads one entry per line from path, skipping blank lines
// and comment lines starting with '#'.
func LoadWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist %s: %w", path, err)
	}
	return words, nil
}

// SubdomainWords returns the wordlist at path, or the built-in subdomain
// list when path is empty.
func SubdomainWords(path string) ([]string, error) {
	if path == "" {
		return defaultSubdomainWords, nil
	}
	return LoadWordlist(path)
}

// EndpointWords returns the wordlist at path, or the built-in endpoint
// list when path is empty.
func EndpointWords(path string) ([]string, error) {
	if path == "" {
		return defaultEndpointWords, nil
	}
	return LoadWordlist(path)
}

// HiddenFileWords returns the wordlist at path, or the built-in hidden
// file list when path is empty.
func HiddenFileWords(path string) ([]string, error) {
	if path == "" {
		return defaultHiddenFileWords, nil
	}
	return LoadWordlist(path)
}
