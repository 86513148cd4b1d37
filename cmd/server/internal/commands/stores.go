package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/offices/internal/store"
	awsstore "github.com/wolfeidau/offices/internal/store/aws"
	kvstore "github.com/wolfeidau/offices/internal/store/kv"
	memorystore "github.com/wolfeidau/offices/internal/store/memory"
	postgresstore "github.com/wolfeidau/offices/internal/store/postgres"
)

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"OFFICES_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

type DynamoDBStoreFlags struct {
	Region         string `help:"AWS region" default:"" env:"AWS_REGION"`
	Endpoint       string `help:"DynamoDB endpoint override, for DynamoDB Local" default:"" env:"OFFICES_DYNAMODB_ENDPOINT"`
	OfficesTable   string `help:"offices table name" default:"offices" env:"OFFICES_DYNAMODB_OFFICES_TABLE"`
	OwnerIndex     string `help:"owner index on the offices table" default:"owner-index"`
	EmployeesTable string `help:"employees table name" default:"employees" env:"OFFICES_DYNAMODB_EMPLOYEES_TABLE"`
	CreateTables   bool   `help:"create the tables when they do not exist" default:"false"`
}

type BadgerStoreFlags struct {
	Dir      string `help:"Badger data directory" default:"./data" env:"OFFICES_BADGER_DIR"`
	InMemory bool   `help:"keep the Badger database in memory" default:"false"`
}

// stores is the pair of storage backends the service runs on.
type stores struct {
	offices   store.OfficeStore
	employees store.EmployeeStore
	close     func() error
}

func (c *ServeCmd) openStores(ctx context.Context, log zerolog.Logger) (*stores, error) {
	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.Validate(); err != nil {
			return nil, err
		}

		pg, err := postgresstore.Open(ctx, postgresstore.Config{
			Pool: postgresstore.PoolConfig{
				ConnString:      c.PostgresStore.ConnString,
				MaxConns:        c.PostgresStore.MaxConns,
				MinConns:        c.PostgresStore.MinConns,
				MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
				MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
			},
			AutoMigrate: c.PostgresStore.AutoMigrate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return &stores{
			offices:   pg.Offices(),
			employees: pg.Employees(),
			close:     func() error { pg.Close(); return nil },
		}, nil

	case "dynamodb":
		client, err := awsstore.NewClient(ctx, awsstore.ClientConfig{
			Region:            c.DynamoDBStore.Region,
			Endpoint:          c.DynamoDBStore.Endpoint,
			StaticCredentials: c.DynamoDBStore.Endpoint != "",
		})
		if err != nil {
			return nil, err
		}

		tables := awsstore.TableConfig{
			OfficesTable:   c.DynamoDBStore.OfficesTable,
			OwnerIndex:     c.DynamoDBStore.OwnerIndex,
			EmployeesTable: c.DynamoDBStore.EmployeesTable,
		}
		tables.ApplyDefaults()

		if c.DynamoDBStore.CreateTables {
			if err := awsstore.EnsureTables(ctx, client, tables); err != nil {
				return nil, fmt.Errorf("failed to create tables: %w", err)
			}
		}

		log.Info().Str("offices_table", tables.OfficesTable).Str("employees_table", tables.EmployeesTable).Msg("Using DynamoDB stores")
		return &stores{
			offices:   awsstore.NewOfficeStore(client, tables),
			employees: awsstore.NewEmployeeStore(client, tables),
			close:     func() error { return nil },
		}, nil

	case "badger":
		cfg := kvstore.Config{Dir: c.BadgerStore.Dir, InMemory: c.BadgerStore.InMemory}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		db, err := kvstore.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}

		log.Info().Str("dir", cfg.Dir).Bool("in_memory", cfg.InMemory).Msg("Using Badger stores")
		return &stores{
			offices:   kvstore.NewOfficeStore(db),
			employees: kvstore.NewEmployeeStore(db),
			close:     db.Close,
		}, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return &stores{
			offices:   memorystore.NewOfficeStore(),
			employees: memorystore.NewEmployeeStore(),
			close:     func() error { return nil },
		}, nil
	}
}
