package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/webrecon/webrecon/internal/model"
)

// PageContent holds everything the HTML extractor found in one document.
// Link candidates are raw attribute values; the caller normalizes and
// scope-filters them.
type PageContent struct {
	// Title is the document title, trimmed.
	Title string

	// Links are the raw href values of anchors, possibly relative.
	Links []string

	// Forms are the forms found in the document, with absolute actions.
	Forms []model.FormSpec

	// Endpoints are API endpoint candidates found as literal anchors.
	Endpoints []model.EndpointSpec

	// JSFiles are the absolute URLs of external scripts.
	JSFiles []string

	// InlineScripts are the bodies of inline script elements, in
	// document order, for the JavaScript analyzer.
	InlineScripts []string
}

// HTMLExtractor parses HTML documents for reconnaissance data.
type HTMLExtractor struct {
	csrfPattern *regexp.Regexp
}

// NewHTMLExtractor creates an extractor. csrfPattern identifies form field
// names that carry anti-forgery tokens; nil disables CSRF tagging.
func NewHTMLExtractor(csrfPattern *regexp.Regexp) *HTMLExtractor {
	return &HTMLExtractor{csrfPattern: csrfPattern}
}

// Extract parses the document body and collects links, forms, the title
// and script references. base is the URL the body was fetched from and
// anchors relative references.
func (e *HTMLExtractor) Extract(body []byte, base *url.URL) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := &PageContent{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	endpointSeen := make(map[string]bool)
	addLink := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "#") {
			return
		}
		content.Links = append(content.Links, ref)

		// Anchors whose path already looks like an API route are endpoint
		// candidates in their own right, before any script ever calls them.
		resolved := resolveRef(base, ref)
		if resolved == "" || !looksLikeEndpoint(resolved) || endpointSeen[resolved] {
			return
		}
		endpointSeen[resolved] = true
		content.Endpoints = append(content.Endpoints, model.EndpointSpec{
			URL:         resolved,
			Source:      model.SourceHTML,
			MethodGuess: "GET",
		})
	}

	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			addLink(href)
		}
	})

	doc.Find("iframe[src], frame[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			addLink(src)
		}
	})

	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		content.Forms = append(content.Forms, e.extractForm(sel, base))
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			if text := sel.Text(); strings.TrimSpace(text) != "" {
				content.InlineScripts = append(content.InlineScripts, text)
			}
			return
		}
		if resolved := resolveRef(base, src); resolved != "" {
			content.JSFiles = append(content.JSFiles, resolved)
		}
	})

	return content, nil
}

// extractForm converts one form element. The action resolves against base;
// an empty action means the form posts back to the current page.
func (e *HTMLExtractor) extractForm(sel *goquery.Selection, base *url.URL) model.FormSpec {
	action := strings.TrimSpace(sel.AttrOr("action", ""))
	if action == "" {
		action = base.String()
	} else {
		action = resolveRef(base, action)
	}

	method := strings.ToUpper(strings.TrimSpace(sel.AttrOr("method", "")))
	if method == "" {
		method = "GET"
	}

	form := model.FormSpec{Action: action, Method: method}
	sel.Find("input, textarea, select").Each(func(_ int, field *goquery.Selection) {
		form.Fields = append(form.Fields, e.extractField(field))
	})
	return form
}

func (e *HTMLExtractor) extractField(sel *goquery.Selection) model.FormField {
	name := sel.AttrOr("name", "")
	typ := strings.ToLower(sel.AttrOr("type", ""))
	if typ == "" {
		switch goquery.NodeName(sel) {
		case "textarea":
			typ = "textarea"
		case "select":
			typ = "select"
		default:
			typ = "text"
		}
	}

	field := model.FormField{
		Name:   name,
		Type:   typ,
		Value:  sel.AttrOr("value", ""),
		Hidden: typ == "hidden",
	}
	if e.csrfPattern != nil && name != "" && e.csrfPattern.MatchString(name) {
		field.CSRF = true
	}
	return field
}

// apiPathRe marks URL paths that look like API routes.
var apiPathRe = regexp.MustCompile(`(?i)(?:^|/)(?:api|rest)/|/v\d+/`)

// looksLikeEndpoint reports whether an absolute URL's path has API shape:
// an /api/ or /rest/ segment, a version segment, or a .json document.
func looksLikeEndpoint(absolute string) bool {
	u, err := url.Parse(absolute)
	if err != nil {
		return false
	}
	return apiPathRe.MatchString(u.Path) || strings.HasSuffix(strings.ToLower(u.Path), ".json")
}

// resolveRef resolves ref against base, returning "" when ref is
// unparsable or a non-network scheme like javascript: or data:.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return u.String()
	}
	return ""
}
