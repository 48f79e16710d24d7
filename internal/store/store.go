// Package store guarda blobs de texto por chave. O estado do ledger é
// persistido inteiro sob uma única chave.
package store

import (
	"context"
	"fmt"
)

// KV é a capacidade mínima de armazenamento: ausência de chave não é erro
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Drivers suportados em STORE_DRIVER
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver indica um STORE_DRIVER não suportado
type ErrUnknownDriver string

func (e ErrUnknownDriver) Error() string { return fmt.Sprintf("unknown store driver %q", string(e)) }
