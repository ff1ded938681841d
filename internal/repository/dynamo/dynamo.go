// Package dynamo implements the domain repositories on Amazon DynamoDB.
//
// Every table is keyed by the string attribute "id". Secondary lookups go
// through the global secondary indexes listed below; listings are full scans.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"compassevent/internal/domain"
)

// Secondary index names.
const (
	IndexUserEmail             = "emailIndex"
	IndexUserConfirmationToken = "emailConfirmationTokenIndex"
	IndexEventName             = "eventName-index"
	IndexRegistrationPair      = "participantId-eventId-index"
)

// API is the subset of the DynamoDB client used by the repositories.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Tables holds the table names.
type Tables struct {
	Users         string
	Events        string
	Registrations string
}

// NewClient builds a DynamoDB client. A non-empty endpoint overrides the
// service endpoint (DynamoDB Local, LocalStack).
func NewClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func getItem[T any](ctx context.Context, client API, table, id string) (*T, error) {
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item %s/%s: %w", table, id, err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s item: %w", table, err)
	}
	return &v, nil
}

func putItem(ctx context.Context, client API, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", table, err)
	}
	if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("put item %s: %w", table, err)
	}
	return nil
}

// putNewItem writes item only if no item with the same id exists and
// reports a collision as domain.ErrConflict.
func putNewItem(ctx context.Context, client API, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", table, err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("put item %s: %w", table, domain.ErrConflict)
		}
		return fmt.Errorf("put item %s: %w", table, err)
	}
	return nil
}

// queryIndex runs an equality query on index and collects every page.
func queryIndex[T any](ctx context.Context, client API, table, index string, keyCond expression.KeyConditionBuilder) ([]*T, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}
	paginator := dynamodb.NewQueryPaginator(client, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	var items []*T
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s/%s: %w", table, index, err)
		}
		var batch []*T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal %s items: %w", table, err)
		}
		items = append(items, batch...)
	}
	return items, nil
}

// queryFirst returns the first item matching keyCond or domain.ErrNotFound.
func queryFirst[T any](ctx context.Context, client API, table, index string, keyCond expression.KeyConditionBuilder) (*T, error) {
	items, err := queryIndex[T](ctx, client, table, index, keyCond)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return items[0], nil
}

func scanAll[T any](ctx context.Context, client API, table string) ([]*T, error) {
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	var items []*T
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		var batch []*T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal %s items: %w", table, err)
		}
		items = append(items, batch...)
	}
	return items, nil
}
