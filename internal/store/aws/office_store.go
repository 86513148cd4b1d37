package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// OfficeStore is a DynamoDB implementation of store.OfficeStore.
//
// Offices without an owner carry no owner attribute and so never appear in the
// owner index; they are reachable by id only.
type OfficeStore struct {
	client     *dynamodb.Client
	tableName  string
	ownerIndex string
}

// NewOfficeStore creates a new DynamoDB office store.
func NewOfficeStore(client *dynamodb.Client, cfg TableConfig) *OfficeStore {
	cfg.ApplyDefaults()
	return &OfficeStore{
		client:     client,
		tableName:  cfg.OfficesTable,
		ownerIndex: cfg.OwnerIndex,
	}
}

// listCursor is the owner index key of the last office on a page.
type listCursor struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

// Create assigns an ID and writes the office.
func (s *OfficeStore) Create(ctx context.Context, office *models.Office) error {
	id, err := store.NewID()
	if err != nil {
		return err
	}

	stored := office.Clone()
	stored.ID = id

	item, err := marshalItem(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal office: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return wrapAWSError(err, "failed to create office")
	}

	office.ID = id

	log.Debug().
		Str("office_id", id).
		Str("owner", office.Owner).
		Msg("office created")

	return nil
}

// Get retrieves an office by ID.
func (s *OfficeStore) Get(ctx context.Context, officeID string) (*models.Office, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            stringKey("id", officeID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, wrapAWSError(err, "failed to get office")
	}

	if result.Item == nil {
		return nil, store.ErrOfficeNotFound
	}

	var office models.Office
	if err := unmarshalItem(result.Item, &office); err != nil {
		return nil, fmt.Errorf("failed to unmarshal office: %w", err)
	}

	return &office, nil
}

// Put overwrites an existing office.
func (s *OfficeStore) Put(ctx context.Context, office *models.Office) error {
	item, err := marshalItem(office)
	if err != nil {
		return fmt.Errorf("failed to marshal office: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrOfficeNotFound
		}
		return wrapAWSError(err, "failed to update office")
	}

	return nil
}

// Delete deletes an office by ID.
func (s *OfficeStore) Delete(ctx context.Context, officeID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 stringKey("id", officeID),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrOfficeNotFound
		}
		return wrapAWSError(err, "failed to delete office")
	}

	log.Debug().Str("office_id", officeID).Msg("office deleted")

	return nil
}

// FindByIdentity queries the owner index and filters on company, city and state.
// Index reads are eventually consistent, which widens the check-then-act window.
func (s *OfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	keyCond := expression.Key("owner").Equal(expression.Value(owner))
	filter := expression.Name("company").Equal(expression.Value(company)).
		And(expression.Name("city").Equal(expression.Value(city))).
		And(expression.Name("state").Equal(expression.Value(state)))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.ownerIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var offices []*models.Office
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAWSError(err, "failed to query offices by identity")
		}

		for _, item := range page.Items {
			var office models.Office
			if err := unmarshalItem(item, &office); err != nil {
				return nil, fmt.Errorf("failed to unmarshal office: %w", err)
			}
			offices = append(offices, &office)
		}
	}

	return offices, nil
}

// ListByOwner returns a page of the owner's offices in owner index order.
// The cursor is the base58-encoded JSON form of the index key of the last office returned.
func (s *OfficeStore) ListByOwner(ctx context.Context, owner, cursor string, limit int) (*store.OfficePage, error) {
	startKey, err := decodeListCursor(cursor, owner)
	if err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("owner").Equal(expression.Value(owner))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	// one extra item tells us whether another page exists, DynamoDB's
	// LastEvaluatedKey is also set when the page merely ended on the limit
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.ownerIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
		Limit:                     aws.Int32(int32(limit + 1)),
	})
	if err != nil {
		return nil, wrapAWSError(err, "failed to list offices")
	}

	page := &store.OfficePage{}
	for i, item := range result.Items {
		if i == limit {
			page.MoreResults = true
			break
		}

		var office models.Office
		if err := unmarshalItem(item, &office); err != nil {
			return nil, fmt.Errorf("failed to unmarshal office: %w", err)
		}
		page.Offices = append(page.Offices, &office)
	}

	if n := len(page.Offices); n > 0 && page.MoreResults {
		last := page.Offices[n-1]
		page.EndCursor, err = encodeListCursor(listCursor{ID: last.ID, Owner: last.Owner})
		if err != nil {
			return nil, err
		}
	}

	return page, nil
}

func encodeListCursor(c listCursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return store.EncodeCursor(raw), nil
}

// decodeListCursor turns a cursor back into an ExclusiveStartKey for the owner index.
func decodeListCursor(cursor, owner string) (map[string]types.AttributeValue, error) {
	raw, err := store.DecodeCursor(cursor)
	if err != nil || raw == nil {
		return nil, err
	}

	var c listCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidCursor, err)
	}
	if c.ID == "" || c.Owner != owner {
		return nil, fmt.Errorf("%w: cursor belongs to another listing", store.ErrInvalidCursor)
	}

	return map[string]types.AttributeValue{
		"id":    &types.AttributeValueMemberS{Value: c.ID},
		"owner": &types.AttributeValueMemberS{Value: c.Owner},
	}, nil
}

var (
	_ store.OfficeStore   = (*OfficeStore)(nil)
	_ store.EmployeeStore = (*EmployeeStore)(nil)
)
