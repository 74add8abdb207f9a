// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input yields an empty string rather than an error; validators then
// reject the empty value.
//
// Normalization includes:
//   - Strings: collapse inner whitespace, trim leading/trailing spaces
//   - Emails: trim and lower-case
//   - Labels: collapse whitespace and lower-case
//   - URLs: enforce https, lower-case the host, keep the path
package sanitizer
