// Package docpath parses path expressions and resolves them against documents.
//
// Grammar:
//
//	path    = segment { "." segment }
//	segment = ident { "[" index "]" }
//
// A segment with bracket suffixes expands to a FieldStep followed by one
// IndexStep per suffix, so "plans[0].packages[1]" parses to
//
//	[Field(plans) Index(0) Field(packages) Index(1)]
//
// Paths are parsed once and reused. Resolve never creates intermediate
// containers: a missing intermediate key is always an error.
package docpath
