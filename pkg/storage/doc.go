// Package storage owns the gallery slot directory.
//
// Slots are the six files instagram-1.jpg … instagram-6.jpg the website
// renders. Every write goes through a temporary file in the same directory
// followed by a rename, so a download that fails halfway leaves the
// previous image in place. Backup copies the current slots into a
// timestamped directory under backups/ before a run overwrites them.
package storage
