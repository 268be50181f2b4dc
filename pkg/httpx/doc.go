// Package httpx holds the small JSON helpers handlers share: response
// writing, the {"error": message} failure envelope, and bounded request
// body decoding.
package httpx
