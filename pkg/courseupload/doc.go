// Package courseupload provides a reusable library for brokering file
// uploads between end users, a course-management platform and an
// OBS-compatible object store.
//
// It exposes a single Service interface that orchestrates the per-file
// upload pipeline: remote path derivation, temporary storage-credential
// acquisition, the signed (or token-trusting) object-store write,
// registration with the course service, optional course attachment, and
// metadata persistence. Implementations of the collaborators are provided
// under subpackages: the request signer (signer), path strategies
// (remotepath), the course-service client (ulearning), object-store
// uploaders (obs), session caches (cache/memory) and record repositories
// (repo/memory, repo/postgres).
//
// Failure Model
//
// Each file fails fast at the first broken step and reports the stage it
// froze at; sibling files in the same batch are unaffected. A record is
// written only once the course service has acknowledged the upload. There is
// no compensation: a stored object whose registration failed stays in the
// store without a catalog entry.
package courseupload
