// Package html provides a Normaliser implementation for HTML documents.
// It parses the page with golang.org/x/net/html, picks the main content
// region and flattens it to lines of readable text. Pages hosted on
// sites.google.com are typed Google_Site, everything else Web_Page.
package html
