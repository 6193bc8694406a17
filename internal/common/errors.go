// Package common defines the repository-level sentinel errors shared by the
// storage backends of the development server. Match them with errors.Is.
package common

import "errors"

var (
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorUnauthorized  = errors.New("unauthorized")
)
