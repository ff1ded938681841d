package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"compassevent/internal/domain"
)

type eventRepository struct {
	client API
	table  string
}

// NewEventRepository returns an EventRepository backed by the events table.
func NewEventRepository(client API, table string) domain.EventRepository {
	return &eventRepository{client: client, table: table}
}

func (r *eventRepository) Put(ctx context.Context, event *domain.Event) error {
	return putItem(ctx, r.client, r.table, event)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return getItem[domain.Event](ctx, r.client, r.table, id)
}

func (r *eventRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	keyCond := expression.Key("name").Equal(expression.Value(name))
	items, err := queryIndex[domain.Event](ctx, r.client, r.table, IndexEventName, keyCond)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return scanAll[domain.Event](ctx, r.client, r.table)
}
