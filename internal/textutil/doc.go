// Package textutil provides text processing utilities for filename
// sanitization, canonical string matching, and token-based similarity.
//
// The primary use cases are:
//   - Sanitizing company names and invoice numbers for safe filesystem use
//   - Canonicalizing strings for case- and accent-insensitive lookups
//   - Scoring extracted document lines against known company names
//
// Similarity scoring uses term frequency vectors normalized for efficient
// comparison. Tokenization lowercases text, splits on non-alphanumeric
// characters, and filters tokens shorter than 3 characters.
package textutil
