package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-movie-api/internal/domain"
)

// HistoryRepo provides typed DynamoDB operations for the watch-history table.
// GSI: user_id-index for per-user listing.
type HistoryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewHistoryRepo(client *dynamodb.Client, tableName string) *HistoryRepo {
	return &HistoryRepo{client: client, tableName: tableName}
}

func (r *HistoryRepo) Put(ctx context.Context, h *domain.HistoryEntry) error {
	item, err := attributevalue.MarshalMap(h)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *HistoryRepo) Get(ctx context.Context, historyID string) (*domain.HistoryEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("history_id", historyID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("history entry not found: %w", domain.ErrNotFound)
	}
	var h domain.HistoryEntry
	if err := attributevalue.UnmarshalMap(out.Item, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByUserAndMovie returns the existing entry for (userID, movieID), if any.
func (r *HistoryRepo) GetByUserAndMovie(ctx context.Context, userID, movieID string) (*domain.HistoryEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("user_id-index"),
		KeyConditionExpression:   aws.String("#u = :u"),
		FilterExpression:         aws.String("#m = :m"),
		ExpressionAttributeNames: map[string]string{"#u": "user_id", "#m": "movie_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
			":m": &types.AttributeValueMemberS{Value: movieID},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("history entry not found: %w", domain.ErrNotFound)
	}
	var h domain.HistoryEntry
	if err := attributevalue.UnmarshalMap(out.Items[0], &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListByUser returns all entries for userID, most recently watched first.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("#u = :u"),
		ExpressionAttributeNames:  map[string]string{"#u": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":u": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.HistoryEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Touch refreshes the watched_at timestamp of an existing entry.
func (r *HistoryRepo) Touch(ctx context.Context, historyID string, watchedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"watched_at": watchedAt.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("history_id", historyID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *HistoryRepo) Delete(ctx context.Context, historyID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("history_id", historyID),
	})
	return err
}

// DeleteByUser removes every entry for userID.
func (r *HistoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	entries, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := r.Delete(ctx, e.HistoryID); err != nil {
			return err
		}
	}
	return nil
}

