// Package clowder talks to the Clowder data-management service: reading a
// dataset's metadata, uploading produced containers, and creating the
// sensor/year/month/day collection hierarchy they are filed under.
package clowder
