package transport

import "github.com/indigo-web/asisd/internal/asis"

// Serializer writes the only response a connection ever gets. Both writes are final
// and close the connection.
type Serializer interface {
	WriteError(err error) error
	WriteAsis(file *asis.File) error
	Close() error
}
