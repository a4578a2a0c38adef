// Package simplecms provides a small headless content backend with pluggable
// repository and blob storage backends.
//
// It exposes a single Service interface covering content entries organized
// into collections, uploaded media files, role-based read permissions, and
// persisted application settings. Repositories (memory, SQLite, Postgres) and
// blob stores (memory, filesystem, S3) are provided under subpackages, as is
// a first-run seeder that loads the bundled example data set.
//
// Entries are schemaless on purpose: field values travel in Entry.Data and
// are persisted as one JSON document per entry. Authoritative lifecycle
// attributes (collection, slug, status, publication time) are first-class
// fields; everything else belongs to the collection's own shape.
package simplecms
