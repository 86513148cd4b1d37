package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// TableConfig names the DynamoDB tables and index used by the stores.
type TableConfig struct {
	// OfficesTable is keyed by id.
	// Default: offices
	OfficesTable string

	// OwnerIndex is a GSI on the offices table keyed by owner with id as sort key.
	// Default: owner-index
	OwnerIndex string

	// EmployeesTable is keyed by id.
	// Default: employees
	EmployeesTable string
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *TableConfig) ApplyDefaults() {
	if c.OfficesTable == "" {
		c.OfficesTable = "offices"
	}
	if c.OwnerIndex == "" {
		c.OwnerIndex = "owner-index"
	}
	if c.EmployeesTable == "" {
		c.EmployeesTable = "employees"
	}
}

// EnsureTables creates the offices and employees tables when they do not exist
// and waits for them to become active. Intended for development and tests;
// production tables are provisioned outside the service.
func EnsureTables(ctx context.Context, client *dynamodb.Client, cfg TableConfig) error {
	cfg.ApplyDefaults()

	offices := &dynamodb.CreateTableInput{
		TableName: aws.String(cfg.OfficesTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("owner"), AttributeType: types.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(cfg.OwnerIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("owner"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("id"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	}

	employees := &dynamodb.CreateTableInput{
		TableName: aws.String(cfg.EmployeesTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	}

	for _, input := range []*dynamodb.CreateTableInput{offices, employees} {
		if err := createTable(ctx, client, input); err != nil {
			return err
		}
	}

	return nil
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) error {
	name := aws.ToString(input.TableName)

	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return wrapAWSError(err, "failed to create table "+name)
		}
		log.Debug().Str("table", name).Msg("Table already exists")
	} else {
		log.Info().Str("table", name).Msg("Created table")
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName}, 2*time.Minute); err != nil {
		return fmt.Errorf("table %s did not become active: %w", name, err)
	}

	return nil
}
