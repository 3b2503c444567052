package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

// BatchGetItem accepts at most 100 keys per request.
const batchGetLimit = 100

type DynamoProductRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoProductRepository(client *dynamodb.Client, tableName string) *DynamoProductRepository {
	return &DynamoProductRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *DynamoProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.IndexSearchFields()
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("product_id"))).
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
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *DynamoProductRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("product_id", productID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

func (r *DynamoProductRepository) GetProducts(ctx context.Context, productIDs []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(productIDs))

	seen := make(map[string]struct{}, len(productIDs))
	keys := make([]map[string]types.AttributeValue, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, stringKey("product_id", id))
	}

	for start := 0; start < len(keys); start += batchGetLimit {
		end := min(start+batchGetLimit, len(keys))
		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys[start:end]},
		}

		// unprocessed keys are resubmitted until the table drains them
		for len(request) > 0 {
			result, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get items: %w", err)
			}

			var products []domain.Product
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.tableName], &products); err != nil {
				return nil, fmt.Errorf("failed to unmarshal products: %w", err)
			}
			for i := range products {
				out[products[i].ProductID] = &products[i]
			}

			request = result.UnprocessedKeys
		}
	}

	return out, nil
}

func (r *DynamoProductRepository) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}

	if filter, ok := productFilter(q); ok {
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var matched []domain.Product
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		var products []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &products); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		matched = append(matched, products...)
	}

	return pageOf(matched, q), nil
}

// productFilter translates the filter part of q into a scan condition.
// The search term is matched against lower-cased shadow attributes since
// contains() is case-sensitive.
func productFilter(q domain.ProductQuery) (expression.ConditionBuilder, bool) {
	var conds []expression.ConditionBuilder

	if c, ok := q.CategoryFilter(); ok {
		conds = append(conds, expression.Name("category").Equal(expression.Value(c)))
	}
	if q.MinPrice != nil {
		conds = append(conds, expression.Name("price").GreaterThanEqual(expression.Value(*q.MinPrice)))
	}
	if q.MaxPrice != nil {
		conds = append(conds, expression.Name("price").LessThanEqual(expression.Value(*q.MaxPrice)))
	}
	if term := q.SearchTerm(); term != "" {
		conds = append(conds, expression.Name("name_lower").Contains(term).
			Or(expression.Name("description_lower").Contains(term)))
	}

	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	default:
		return expression.And(conds[0], conds[1], conds[2:]...), true
	}
}

func (r *DynamoProductRepository) UpdateProduct(ctx context.Context, productID string, patch domain.UpdateProductRequest, updatedAt time.Time) (*domain.Product, error) {
	update := expression.Set(expression.Name("updated_at"), expression.Value(updatedAt))
	if patch.Name != nil {
		update = update.
			Set(expression.Name("name"), expression.Value(*patch.Name)).
			Set(expression.Name("name_lower"), expression.Value(strings.ToLower(*patch.Name)))
	}
	if patch.Description != nil {
		update = update.
			Set(expression.Name("description"), expression.Value(*patch.Description)).
			Set(expression.Name("description_lower"), expression.Value(strings.ToLower(*patch.Description)))
	}
	if patch.Price != nil {
		update = update.Set(expression.Name("price"), expression.Value(*patch.Price))
	}
	if patch.Category != nil {
		update = update.Set(expression.Name("category"), expression.Value(*patch.Category))
	}
	if patch.Image != nil {
		update = update.Set(expression.Name("image"), expression.Value(*patch.Image))
	}
	if patch.Stock != nil {
		update = update.Set(expression.Name("stock"), expression.Value(*patch.Stock))
	}
	if patch.Rating != nil {
		update = update.Set(expression.Name("rating"), expression.Value(*patch.Rating))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("product_id"))).
		Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("product_id", productID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func (r *DynamoProductRepository) DeleteProduct(ctx context.Context, productID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("product_id"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("product_id", productID),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (r *DynamoProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("category"))).
		Build()
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.Category]struct{})
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan categories: %w", err)
		}
		var rows []struct {
			Category domain.Category `dynamodbav:"category"`
		}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
		}
		for _, row := range rows {
			if row.Category != "" {
				seen[row.Category] = struct{}{}
			}
		}
	}

	return sortedCategories(seen), nil
}

func sortedCategories(seen map[domain.Category]struct{}) []domain.Category {
	out := make([]domain.Category, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
