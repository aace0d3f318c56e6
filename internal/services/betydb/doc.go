// Package betydb writes trait rows in the BETYdb bulk-upload CSV layout and
// submits them to the traits endpoint.
package betydb
