// Package mock provides deterministic test doubles for the ai contract.
//
// The mock embedder derives vectors from a hash of the input text, so the
// same text always maps to the same vector without any network access.
// Tests that need specific failure modes inject behavior through the
// exported function fields.
package mock
