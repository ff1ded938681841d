package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"compassevent/internal/domain"
)

type userRepository struct {
	client API
	table  string
}

// NewUserRepository returns a UserRepository backed by the users table.
func NewUserRepository(client API, table string) domain.UserRepository {
	return &userRepository{client: client, table: table}
}

func (r *userRepository) Put(ctx context.Context, user *domain.User) error {
	return putItem(ctx, r.client, r.table, user)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return getItem[domain.User](ctx, r.client, r.table, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	keyCond := expression.Key("email").Equal(expression.Value(email))
	return queryFirst[domain.User](ctx, r.client, r.table, IndexUserEmail, keyCond)
}

func (r *userRepository) GetByConfirmationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	keyCond := expression.Key("emailConfirmationToken").Equal(expression.Value(token))
	return queryFirst[domain.User](ctx, r.client, r.table, IndexUserConfirmationToken, keyCond)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	return scanAll[domain.User](ctx, r.client, r.table)
}
