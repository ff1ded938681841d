package dynamo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var keyCondPair = regexp.MustCompile(`(#\w+) = (:\w+)`)

// fakeDynamo is an in-memory API. Query understands equality key conditions
// joined by AND. pageSize > 0 splits Scan and Query results into pages.
type fakeDynamo struct {
	mu       sync.Mutex
	tables   map[string][]map[string]types.AttributeValue
	pageSize int
	err      error
	queries  []*dynamodb.QueryInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string][]map[string]types.AttributeValue)}
}

func attrString(item map[string]types.AttributeValue, name string) (string, bool) {
	s, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id, _ := attrString(params.Key, "id")
	for _, item := range f.tables[aws.ToString(params.TableName)] {
		if v, _ := attrString(item, "id"); v == id {
			return &dynamodb.GetItemOutput{Item: item}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	table := aws.ToString(params.TableName)
	id, _ := attrString(params.Item, "id")
	for i, item := range f.tables[table] {
		if v, _ := attrString(item, "id"); v == id {
			if strings.Contains(aws.ToString(params.ConditionExpression), "attribute_not_exists") {
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
			}
			f.tables[table][i] = params.Item
			return &dynamodb.PutItemOutput{}, nil
		}
	}
	f.tables[table] = append(f.tables[table], params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, params)

	conds := map[string]string{}
	for _, m := range keyCondPair.FindAllStringSubmatch(aws.ToString(params.KeyConditionExpression), -1) {
		name := params.ExpressionAttributeNames[m[1]]
		value, _ := params.ExpressionAttributeValues[m[2]].(*types.AttributeValueMemberS)
		if value == nil {
			return nil, errors.New("fake: only string key values are supported")
		}
		conds[name] = value.Value
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.tables[aws.ToString(params.TableName)] {
		ok := true
		for name, want := range conds {
			if got, present := attrString(item, name); !present || got != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, item)
		}
	}
	items, last := f.page(matched, params.ExclusiveStartKey)
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: last}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	items, last := f.page(f.tables[aws.ToString(params.TableName)], params.ExclusiveStartKey)
	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: last}, nil
}

// page returns the slice following startKey and the key to resume from.
func (f *fakeDynamo) page(all []map[string]types.AttributeValue, startKey map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	start := 0
	if startKey != nil {
		startID, _ := attrString(startKey, "id")
		for i, item := range all {
			if id, _ := attrString(item, "id"); id == startID {
				start = i + 1
				break
			}
		}
	}
	if f.pageSize <= 0 || start+f.pageSize >= len(all) {
		return all[start:], nil
	}
	end := start + f.pageSize
	lastID, _ := attrString(all[end-1], "id")
	return all[start:end], idKey(lastID)
}
