package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"compassevent/internal/domain"
)

type registrationRepository struct {
	client API
	table  string
}

// NewRegistrationRepository returns a RegistrationRepository backed by the registrations table.
func NewRegistrationRepository(client API, table string) domain.RegistrationRepository {
	return &registrationRepository{client: client, table: table}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	return putNewItem(ctx, r.client, r.table, reg)
}

func (r *registrationRepository) Put(ctx context.Context, reg *domain.Registration) error {
	return putItem(ctx, r.client, r.table, reg)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return getItem[domain.Registration](ctx, r.client, r.table, id)
}

func (r *registrationRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.Registration, error) {
	keyCond := expression.Key("participantId").Equal(expression.Value(participantID))
	return queryIndex[domain.Registration](ctx, r.client, r.table, IndexRegistrationPair, keyCond)
}

func (r *registrationRepository) ListByParticipantAndEvent(ctx context.Context, participantID, eventID string) ([]*domain.Registration, error) {
	keyCond := expression.Key("participantId").Equal(expression.Value(participantID)).
		And(expression.Key("eventId").Equal(expression.Value(eventID)))
	return queryIndex[domain.Registration](ctx, r.client, r.table, IndexRegistrationPair, keyCond)
}
