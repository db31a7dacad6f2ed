package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

// DynamoDBClient is the subset of the DynamoDB API the cache uses.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// PredictionRecord is one cached prediction payload.
type PredictionRecord struct {
	StationID   string `dynamodbav:"stationId"`
	Date        string `dynamodbav:"date"` // London date, YYYY-MM-DD
	Payload     []byte `dynamodbav:"payload"`
	LastUpdated int64  `dynamodbav:"lastUpdated"`
	TTL         int64  `dynamodbav:"ttl"`
}

func (r *PredictionRecord) Validate() error {
	if r.StationID == "" {
		return errors.New("station ID is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("invalid date format: %s", r.Date)
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}

// DynamoPredictionCache stores raw prediction payloads in DynamoDB.
type DynamoPredictionCache struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	clock     clock
}

func NewDynamoPredictionCache(client DynamoDBClient, cacheConfig *config.CacheConfig) *DynamoPredictionCache {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoPredictionCache{
		client:    client,
		tableName: cacheConfig.DynamoTableName,
		ttl:       cacheConfig.GetDynamoTTL(),
		clock:     realClock{},
	}
}

// GetPayload retrieves the cached payload for a station and date, or nil.
func (c *DynamoPredictionCache) GetPayload(ctx context.Context, stationID uktides.StationID, date string) ([]byte, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"stationId": &types.AttributeValueMemberS{Value: string(stationID)},
			"date":      &types.AttributeValueMemberS{Value: date},
		},
	}

	result, err := c.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("getting predictions from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var record PredictionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling prediction record: %w", err)
	}

	// DynamoDB TTL deletion is lazy, so expired items can still be read.
	if c.clock.Now().Unix() >= record.TTL {
		log.Debug().
			Str("station_id", string(stationID)).
			Str("date", date).
			Msg("Cache expired")
		return nil, nil
	}

	return record.Payload, nil
}

// SavePayload writes a payload with a fresh TTL.
func (c *DynamoPredictionCache) SavePayload(ctx context.Context, stationID uktides.StationID, date string, payload []byte) error {
	now := c.clock.Now().Unix()
	record := PredictionRecord{
		StationID:   string(stationID),
		Date:        date,
		Payload:     payload,
		LastUpdated: now,
		TTL:         now + int64(c.ttl.Seconds()),
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid prediction record: %w", err)
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling prediction record: %w", err)
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting predictions in DynamoDB: %w", err)
	}

	log.Debug().
		Str("station_id", record.StationID).
		Str("date", record.Date).
		Int("bytes", len(payload)).
		Msg("Saved predictions to cache")

	return nil
}
