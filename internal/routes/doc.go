// Package routes builds the two route sets compared by the sitemap check:
// the routes the sitemap lists and the routes the site tree implies.
package routes
