// Package postgres provides the PostgreSQL implementation of the storage
// interfaces defined in the internal/store package. It handles query
// execution, mapping between run records and database rows, and the
// translation of driver errors into the store error contract.
package postgres
