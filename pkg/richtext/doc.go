// Package richtext turns post content into the final text that gets submitted,
// optionally appending a hashtag and computing link facets for every hashtag
// in the result.
package richtext
