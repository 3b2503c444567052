package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

// DynamoUserRepository keys users by their lower-cased email.
type DynamoUserRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoUserRepository(client *dynamodb.Client, tableName string) *DynamoUserRepository {
	return &DynamoUserRepository{client: client, tableName: tableName}
}

func (r *DynamoUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	av, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("email"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

func (r *DynamoUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("email", email),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if result.Item == nil {
		return nil, ErrUserNotFound
	}

	var user domain.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}
