// Package types defines the shared vocabulary of the hbnb record console:
// the tagged scalar Value stored in entity fields, the storage Config,
// and the sentinel errors reported by the validator, interpreter, and store.
package types
