// Package textutil provides filename sanitization and small text helpers.
//
// Titles fetched from the platform are NFC-normalized before unsafe
// characters are replaced, so visually identical titles always map to the
// same base name on disk.
package textutil
