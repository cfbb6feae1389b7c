// Package domain defines the core entities of the application and the
// validation rules that apply to them regardless of storage or transport.
package domain
