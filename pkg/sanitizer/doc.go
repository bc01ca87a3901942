// Package sanitizer provides input normalization functions for customer and order data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings rather than errors.
//
// Services call these before validation and storage, so that lookups and duplicate
// checks always compare canonical values.
//
// Normalization includes:
//   - CPF: eleven digits when valid, empty otherwise; display form DDD.DDD.DDD-DD
//   - Phone numbers: Convert to E.164 format (+[country][number]), Brazil first
//   - Emails: Trim and lowercase
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Labels: Lowercase, collapse whitespace - "Pending " becomes "pending"
package sanitizer
