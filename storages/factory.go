package storages

import (
	"context"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
)

//NewObjectStore returns Postgres objects storage if dsn is configured, in-memory otherwise
func NewObjectStore(ctx context.Context, dsn string) (gateway.ObjectStore, error) {
	if dsn == "" {
		logging.Info("Objects storage isn't configured. In-memory objects storage is used")
		return NewInMemoryObjects(), nil
	}

	logging.Info("🛫 Initializing postgres objects storage...")
	return NewPostgresObjects(ctx, dsn)
}
