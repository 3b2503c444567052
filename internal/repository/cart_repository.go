package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

type DynamoCartRepository struct {
	client       *dynamodb.Client
	tableName    string
	productTable string
}

func NewDynamoCartRepository(client *dynamodb.Client, tableName, productTable string) *DynamoCartRepository {
	return &DynamoCartRepository{
		client:       client,
		tableName:    tableName,
		productTable: productTable,
	}
}

func (r *DynamoCartRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            stringKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if result.Item == nil {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}

	var cart domain.Cart
	if err := attributevalue.UnmarshalMap(result.Item, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// SaveCart puts the cart conditioned on its version. Stock guards become
// ConditionChecks on the product table inside the same transaction, so the
// stock check and the quantity write commit together or not at all.
func (r *DynamoCartRepository) SaveCart(ctx context.Context, cart *domain.Cart, guards []domain.StockGuard) error {
	next := *cart
	next.Version = cart.Version + 1
	next.UpdatedAt = time.Now().UTC()

	av, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	expr, err := expression.NewBuilder().WithCondition(versionCondition(cart.Version)).Build()
	if err != nil {
		return err
	}

	if len(guards) == 0 {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			if isConditionFailed(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to put cart: %w", err)
		}
		cart.Version, cart.UpdatedAt = next.Version, next.UpdatedAt
		return nil
	}

	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}}
	for _, g := range guards {
		check, err := expression.NewBuilder().WithCondition(stockCondition(g.Quantity)).Build()
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			ConditionCheck: &types.ConditionCheck{
				TableName:                 aws.String(r.productTable),
				Key:                       stringKey("product_id", g.ProductID),
				ConditionExpression:       check.Condition(),
				ExpressionAttributeNames:  check.Names(),
				ExpressionAttributeValues: check.Values(),
			},
		})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return transactionError(err)
	}
	cart.Version, cart.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

// ClearCart is a single UpdateItem with no condition, so it cannot lose a
// race. ADD on version works for carts that were never written.
func (r *DynamoCartRepository) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	update := expression.Set(expression.Name("items"), expression.Value([]domain.CartItem{})).
		Set(expression.Name("updated_at"), expression.Value(time.Now().UTC())).
		Add(expression.Name("version"), expression.Value(1))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("user_id", userID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	var cart domain.Cart
	if err := attributevalue.UnmarshalMap(result.Attributes, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func versionCondition(version int64) expression.ConditionBuilder {
	if version == 0 {
		return expression.AttributeNotExists(expression.Name("user_id"))
	}
	return expression.Name("version").Equal(expression.Value(version))
}

func stockCondition(quantity int) expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name("product_id")).
		And(expression.Name("stock").GreaterThanEqual(expression.Value(quantity)))
}

// transactionError maps a cancelled cart transaction to the failing
// condition. The cart Put is always the first item. A TransactionConflict
// means a concurrent write touched one of the items, so the caller should
// reload and retry like any other lost race.
func transactionError(err error) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return fmt.Errorf("failed to write cart transaction: %w", err)
	}
	conflict := false
	for i, reason := range canceled.CancellationReasons {
		switch aws.ToString(reason.Code) {
		case "ConditionalCheckFailed":
			if i == 0 {
				return ErrVersionConflict
			}
			return ErrInsufficientStock
		case "TransactionConflict":
			conflict = true
		}
	}
	if conflict {
		return ErrVersionConflict
	}
	return fmt.Errorf("failed to write cart transaction: %w", err)
}
