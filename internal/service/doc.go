// Package service implements the application's business logic on top of
// the store interfaces. Services validate input, enforce existence and
// uniqueness rules, and coordinate transactions and background work;
// they never touch SQL or transports directly.
package service
