// Package mongostore provides a MongoDB-backed implementation of the
// entitlement usage store using the official driver v2.
//
// Increments are expressed as a findOneAndUpdate with $inc and upsert, an
// operation MongoDB applies atomically per document. Combined with the
// unique (user_id, period) index this gives the same no-lost-updates
// guarantee as the PostgreSQL store's ON CONFLICT upsert.
package mongostore
