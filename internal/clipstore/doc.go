// Package clipstore catalogs exported daily clips in SQLite. Each day has at
// most one clip row pointing at the rendered video and its poster thumbnail;
// re-exporting a day replaces the row in place.
package clipstore
