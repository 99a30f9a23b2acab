// Package catalog declares the entity types served by the entitykit CLI:
// customers and their orders, and posts tagged through the post_tags
// junction. It supplies their SQLite mappings, before-write hooks, and
// relation declarations.
package catalog
