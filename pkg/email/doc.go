// Package email sends transactional mail through Postmark, with a
// file-based sender for development. Callers compose the HTML body;
// the package only validates and delivers.
package email
