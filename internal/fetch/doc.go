// Package fetch retrieves the HTML of a target page over HTTP(S).
// It applies browser-like request headers, follows redirects, enforces
// a response size cap, and measures page load time for the technical
// health scoring downstream.
package fetch
