// Package database provides connection pool management for PostgreSQL.
//
// The pool backs the postgres snapshot store. Connection settings come from
// config.DBConfig, either as a single URL or as discrete fields.
package database
