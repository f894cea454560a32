// Package search implements the keyword retrieval rules applied to the
// single active document.
package search

import "strings"

// Sentences are delimited by the literal period-space token, not by
// linguistic sentence boundaries.
const sentenceDelim = ". "

// Answer applies the retrieval rules to one document and returns the result
// lines. Rules are priority-ordered and the first matching rule wins; all
// matching is case-insensitive. Output is deterministic for fixed inputs.
//
//  1. A query containing "document name" returns the filename.
//  2. A query containing "document overview" returns every sentence
//     containing "overview" or "summary".
//  3. A query containing "document objective" returns every sentence
//     containing "objective" or "goal".
//  4. Otherwise the query is split on whitespace and the first word found
//     anywhere in the content selects every sentence containing that word;
//     remaining words are never checked.
//
// A nil result means no word of the query appears in the content.
func Answer(filename, content, query string) []string {
	queryLower := strings.ToLower(query)

	if strings.Contains(queryLower, "document name") {
		return []string{"Document Name: " + filename}
	}
	if strings.Contains(queryLower, "document overview") {
		return []string{found(filename, collect(content, "overview", "summary"))}
	}
	if strings.Contains(queryLower, "document objective") {
		return []string{found(filename, collect(content, "objective", "goal"))}
	}

	contentLower := strings.ToLower(content)
	for _, word := range strings.Fields(queryLower) {
		if strings.Contains(contentLower, word) {
			return []string{found(filename, collect(content, word))}
		}
	}
	return nil
}

func found(filename, joined string) string {
	return "Found in " + filename + ": " + joined
}

// collect gathers the sentences containing any of the terms, preserving
// document order, and rejoins them with the sentence delimiter. An empty
// string is a defined result, not an error.
func collect(content string, terms ...string) string {
	sentences := strings.Split(content, sentenceDelim)
	var matched []string
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = append(matched, sentence)
				break
			}
		}
	}
	return strings.Join(matched, sentenceDelim)
}
