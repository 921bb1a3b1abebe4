// Package normalisers turns fetched bytes into documents. Each
// subpackage handles one family of MIME types; Registry picks between
// them by MIME type and priority.
package normalisers
