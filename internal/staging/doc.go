// Package staging gathers scattered capture members into one directory of
// symlinks so the conversion workflow can find them by shared base name, and
// maintains the staging root (stale directory pruning and listing).
package staging
