package storages

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	createObjectsTableQuery = `CREATE TABLE IF NOT EXISTS object_entities (
									id text PRIMARY KEY,
									entity_id text NOT NULL,
									entity_ref text NOT NULL DEFAULT '',
									data jsonb NOT NULL,
									date_created timestamptz NOT NULL,
									date_modified timestamptz NOT NULL
								)`
	createEntityIndexQuery = `CREATE INDEX IF NOT EXISTS object_entities_entity_id_idx ON object_entities (entity_id)`
	createDataIndexQuery   = `CREATE INDEX IF NOT EXISTS object_entities_data_idx ON object_entities USING GIN (data jsonb_path_ops)`

	selectObjectQuery = `SELECT id, entity_id, entity_ref, data, date_created, date_modified FROM object_entities WHERE id = $1`
	searchQuery       = `SELECT id, entity_id, entity_ref, data, date_created, date_modified FROM object_entities
							WHERE data @> $1::jsonb AND (cardinality($2::text[]) = 0 OR entity_id = ANY($2::text[]))
							ORDER BY date_created, id`
	upsertObjectQuery = `INSERT INTO object_entities (id, entity_id, entity_ref, data, date_created, date_modified)
							VALUES ($1, $2, $3, $4, $5, $6)
							ON CONFLICT (id) DO UPDATE SET entity_id = excluded.entity_id, entity_ref = excluded.entity_ref,
							data = excluded.data, date_modified = excluded.date_modified
							RETURNING date_created`
)

//PostgresObjects is a gateway.ObjectStore which keeps objects data in a jsonb column
//filters are applied with jsonb containment (@>)
type PostgresObjects struct {
	dataSource *sql.DB
}

//NewPostgresObjects opens connection and creates the table if it doesn't exist
func NewPostgresObjects(ctx context.Context, dsn string) (*PostgresObjects, error) {
	dataSource, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}

	if err := dataSource.PingContext(ctx); err != nil {
		dataSource.Close()
		return nil, errors.Wrap(err, "testing postgres connection")
	}

	for _, query := range []string{createObjectsTableQuery, createEntityIndexQuery, createDataIndexQuery} {
		if _, err := dataSource.ExecContext(ctx, query); err != nil {
			dataSource.Close()
			return nil, errors.Wrapf(err, "executing [%s]", query)
		}
	}

	return &PostgresObjects{dataSource: dataSource}, nil
}

func (p *PostgresObjects) Find(ctx context.Context, id string) (*gateway.ObjectEntity, error) {
	row := p.dataSource.QueryRowContext(ctx, selectObjectQuery, id)
	object, err := scanObject(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(gateway.ErrObjectNotFound, "id [%s]", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "selecting object [%s]", id)
	}

	return object, nil
}

func (p *PostgresObjects) SearchObjects(ctx context.Context, filters map[string]interface{}, entityIDs []string) ([]*gateway.ObjectEntity, error) {
	containment := map[string]interface{}{}
	for key, value := range filters {
		if err := jsonutils.NewDotPath(key).Set(containment, value); err != nil {
			return nil, errors.Wrapf(err, "building filter [%s]", key)
		}
	}
	containmentBytes, err := json.Marshal(containment)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling filters")
	}

	if entityIDs == nil {
		entityIDs = []string{}
	}

	rows, err := p.dataSource.QueryContext(ctx, searchQuery, string(containmentBytes), pq.Array(entityIDs))
	if err != nil {
		return nil, errors.Wrap(err, "searching objects")
	}
	defer rows.Close()

	result := []*gateway.ObjectEntity{}
	for rows.Next() {
		object, err := scanObject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning object")
		}
		result = append(result, object)
	}

	return result, rows.Err()
}

func (p *PostgresObjects) Save(ctx context.Context, object *gateway.ObjectEntity) error {
	if object == nil {
		return errors.New("object can't be nil")
	}

	now := timestamp.Now().UTC()
	if object.ID == "" {
		object.ID = uuid.New()
	}
	if object.DateCreated.IsZero() {
		object.DateCreated = now
	}
	object.DateModified = now

	data := object.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "marshalling object [%s]", object.ID)
	}

	var entityID, entityRef string
	if object.Entity != nil {
		entityID = object.Entity.ID
		entityRef = object.Entity.Reference
	}

	var dateCreated time.Time
	if err := p.dataSource.QueryRowContext(ctx, upsertObjectQuery, object.ID, entityID, entityRef, string(dataBytes), object.DateCreated, object.DateModified).Scan(&dateCreated); err != nil {
		return errors.Wrapf(err, "saving object [%s]", object.ID)
	}
	object.DateCreated = dateCreated.UTC()

	return nil
}

func (p *PostgresObjects) Close() error {
	if err := p.dataSource.Close(); err != nil {
		logging.Errorf("Error closing postgres objects storage: %v", err)
		return err
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanObject(row scanner) (*gateway.ObjectEntity, error) {
	var id, entityID, entityRef string
	var data []byte
	var dateCreated, dateModified time.Time
	if err := row.Scan(&id, &entityID, &entityRef, &data, &dateCreated, &dateModified); err != nil {
		return nil, err
	}

	object := &gateway.ObjectEntity{
		ID:           id,
		Entity:       &gateway.Entity{ID: entityID, Reference: entityRef},
		Data:         map[string]interface{}{},
		DateCreated:  dateCreated.UTC(),
		DateModified: dateModified.UTC(),
	}
	if err := json.Unmarshal(data, &object.Data); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling object [%s] data", id)
	}

	return object, nil
}
