// Package connectors routes course sources to the connector that can
// read them: local paths, web pages and GitHub repositories.
package connectors
