package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-movie-api/internal/domain"
)

// MovieRepo provides typed DynamoDB operations for the movies table.
type MovieRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMovieRepo(client *dynamodb.Client, tableName string) *MovieRepo {
	return &MovieRepo{client: client, tableName: tableName}
}

func (r *MovieRepo) Put(ctx context.Context, m *domain.Movie) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal movie: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MovieRepo) Get(ctx context.Context, movieID string) (*domain.Movie, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("movie_id", movieID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("movie not found: %w", domain.ErrNotFound)
	}
	var m domain.Movie
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Scan returns every movie. The catalog is small enough that the service
// sorts in memory rather than maintaining a rating index.
func (r *MovieRepo) Scan(ctx context.Context) ([]domain.Movie, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var movies []domain.Movie
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *MovieRepo) Update(ctx context.Context, movieID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates, time.Now()))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("movie_id", movieID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *MovieRepo) Delete(ctx context.Context, movieID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("movie_id", movieID),
	})
	return err
}
