// Package natsls carries directory listings over a NATS JetStream
// key-value bucket.
//
// Each directory key is stored under its own KV key, the configured prefix
// followed by the directory key:
//
//	""          -> meta/ls/
//	"foo/"      -> meta/ls/foo/
//	"foo/bar/"  -> meta/ls/foo/bar/
//
// Values are the JSON encoding of a listing.Directory. Deleting or purging a
// key, or storing JSON null, means the listing no longer exists.
//
// Transport implements lswatch.Transport with one KV watcher per subscribed
// key. Store publishes and reads listings.
package natsls
