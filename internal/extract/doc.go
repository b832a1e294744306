// Package extract pulls references and component placeholders out of page markup.
//
// References are found lexically: every href="..." or src="..." attribute
// value in the text, in order of appearance, duplicates included. No markup
// parsing happens, so malformed pages simply yield whatever matches are
// present.
//
// Placeholders need element structure (an id on an element that is later
// filled by the component loader), so they are found with golang.org/x/net/html.
package extract
