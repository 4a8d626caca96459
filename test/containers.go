package test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcWait "github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgDefaultPort = "5432/tcp"
	pgUser        = "test"
	pgPassword    = "test"
	pgDatabase    = "test"

	redisDefaultPort = "6379/tcp"

	envPostgresPortVariable = "PG_TEST_PORT"
	envRedisPortVariable    = "REDIS_TEST_PORT"
)

//PostgresContainer is a Postgres testcontainer
type PostgresContainer struct {
	Container testcontainers.Container
	Context   context.Context
	Host      string
	Port      int
}

//NewPostgresContainer creates new Postgres test container if PG_TEST_PORT is not defined. Otherwise uses db at defined port.
//This logic is required for running test at CI environment
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	if os.Getenv(envPostgresPortVariable) != "" {
		port, err := strconv.Atoi(os.Getenv(envPostgresPortVariable))
		if err != nil {
			return nil, err
		}
		return &PostgresContainer{Context: ctx, Host: "localhost", Port: port}, nil
	}

	dbURL := func(port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", pgUser, pgPassword, port.Port(), pgDatabase)
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:12-alpine",
			ExposedPorts: []string{pgDefaultPort},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: tcWait.ForSQL(pgDefaultPort, "postgres", dbURL).Timeout(time.Second * 60),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, port, err := mappedAddress(ctx, container, pgDefaultPort)
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{Container: container, Context: ctx, Host: host, Port: port}, nil
}

//DSN returns the connection string of the test database
func (pgc *PostgresContainer) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		pgc.Host, pgc.Port, pgDatabase, pgUser, pgPassword)
}

//Close terminates underlying postgres docker container
func (pgc *PostgresContainer) Close() {
	terminate(pgc.Context, pgc.Container, "postgres")
}

//RedisContainer is a Redis testcontainer
type RedisContainer struct {
	Container testcontainers.Container
	Context   context.Context
	Host      string
	Port      int
}

//NewRedisContainer creates new Redis test container if REDIS_TEST_PORT is not defined. Otherwise uses redis at defined port.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	if os.Getenv(envRedisPortVariable) != "" {
		port, err := strconv.Atoi(os.Getenv(envRedisPortVariable))
		if err != nil {
			return nil, err
		}
		return &RedisContainer{Context: ctx, Host: "localhost", Port: port}, nil
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:6-alpine",
			ExposedPorts: []string{redisDefaultPort},
			WaitingFor:   tcWait.ForLog("Ready to accept connections").WithStartupTimeout(time.Second * 60),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, port, err := mappedAddress(ctx, container, redisDefaultPort)
	if err != nil {
		return nil, err
	}

	return &RedisContainer{Container: container, Context: ctx, Host: host, Port: port}, nil
}

//Close terminates underlying redis docker container
func (rc *RedisContainer) Close() {
	terminate(rc.Context, rc.Container, "redis")
}

func mappedAddress(ctx context.Context, container testcontainers.Container, port nat.Port) (string, int, error) {
	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return "", 0, err
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx)
		return "", 0, err
	}
	return host, mapped.Int(), nil
}

func terminate(ctx context.Context, container testcontainers.Container, name string) {
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		logging.Errorf("Failed to stop %s container: %v", name, err)
	}
}
