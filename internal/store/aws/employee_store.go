package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// EmployeeStore is a DynamoDB implementation of store.EmployeeStore.
type EmployeeStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewEmployeeStore creates a new DynamoDB employee store.
func NewEmployeeStore(client *dynamodb.Client, cfg TableConfig) *EmployeeStore {
	cfg.ApplyDefaults()
	return &EmployeeStore{
		client:    client,
		tableName: cfg.EmployeesTable,
	}
}

// Create writes an employee, assigning an ID when none is set.
func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		id, err := store.NewID()
		if err != nil {
			return err
		}
		employee.ID = id
	}

	item, err := marshalItem(employee)
	if err != nil {
		return fmt.Errorf("failed to marshal employee: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return wrapAWSError(err, "failed to create employee")
	}

	return nil
}

// Get retrieves an employee by ID.
func (s *EmployeeStore) Get(ctx context.Context, employeeID string) (*models.Employee, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            stringKey("id", employeeID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, wrapAWSError(err, "failed to get employee")
	}

	if result.Item == nil {
		return nil, store.ErrEmployeeNotFound
	}

	var employee models.Employee
	if err := unmarshalItem(result.Item, &employee); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee: %w", err)
	}

	return &employee, nil
}

// Put overwrites an existing employee.
func (s *EmployeeStore) Put(ctx context.Context, employee *models.Employee) error {
	item, err := marshalItem(employee)
	if err != nil {
		return fmt.Errorf("failed to marshal employee: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrEmployeeNotFound
		}
		return wrapAWSError(err, "failed to update employee")
	}

	return nil
}
