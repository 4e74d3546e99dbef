// Package render turns script-supplied text into the HTML fragments the host
// displays: ANSI-colored validator messages, markdown docs, and panel or
// preview bodies wrapped in a container div. Everything that reaches the host
// from user text goes through the bluemonday policy in this package.
package render
