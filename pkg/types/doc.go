// Package types defines the entity types, the persistence Backend interface,
// configuration, and standard error types shared by the folio packages.
package types
