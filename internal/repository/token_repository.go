package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// TokenRepository keeps refresh tokens and revoked access tokens in DynamoDB.
// The table's TTL sweeper removes expired items eventually, so reads compare
// ExpiresAt themselves and report expired items as absent.
type TokenRepository struct {
	client    DynamoDBAPI
	tableName string
	timeout   time.Duration
	now       func() time.Time
	logger    *logrus.Logger
}

func NewTokenRepository(client DynamoDBAPI, tableName string, timeout time.Duration, logger *logrus.Logger) *TokenRepository {
	return &TokenRepository{
		client:    client,
		tableName: tableName,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
	}
}

type tokenItem struct {
	Value     string `dynamodbav:"Value"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt"`
}

func tokenItemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "TOKEN#" + key},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func (r *TokenRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	expiresAt := r.now().Add(ttl)
	item := tokenItemKey(key)
	item["Value"] = &types.AttributeValueMemberS{Value: value}
	item["ExpiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.UnixMilli(), 10)}
	// DynamoDB TTL works in whole seconds; round up so the sweeper never runs early.
	item["TTL"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Add(time.Second-1).Unix(), 10)}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to store token key in DynamoDB")
		return fmt.Errorf("failed to store token key: %w", err)
	}

	return nil
}

func (r *TokenRepository) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            tokenItemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get token key from DynamoDB")
		return "", false, fmt.Errorf("failed to get token key: %w", err)
	}

	if result.Item == nil {
		return "", false, nil
	}

	var item tokenItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal token item: %w", err)
	}

	if r.now().UnixMilli() >= item.ExpiresAt {
		return "", false, nil
	}

	return item.Value, true, nil
}

func (r *TokenRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := r.Get(ctx, key)
	return found, err
}

func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       tokenItemKey(key),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to delete token key from DynamoDB")
		return fmt.Errorf("failed to delete token key: %w", err)
	}

	return nil
}
