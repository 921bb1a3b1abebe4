package domain

import "strings"

// DefaultCollectionPrefix is prepended to a course id to name its collection.
const DefaultCollectionPrefix = "HWU_MACS_"

// Course is a course corpus and the vector-store collection that holds it.
type Course struct {
	// ID is the course code, e.g. "F21CA".
	ID string

	// Collection is the vector-store collection name.
	Collection string
}

// NormaliseCourseID trims and upper-cases a course code.
func NormaliseCourseID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// CollectionFor derives a collection name from a prefix and course id.
func CollectionFor(prefix, courseID string) string {
	if prefix == "" {
		prefix = DefaultCollectionPrefix
	}
	return prefix + NormaliseCourseID(courseID)
}
