package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const stationsObjectKey = "stations.json"

// StationListCacheRecord is the S3 object. Stations holds the list in the
// service's own FeatureCollection shape.
type StationListCacheRecord struct {
	Stations    json.RawMessage `json:"stations"`
	LastUpdated int64           `json:"lastUpdated"`
	TTL         int64           `json:"ttl"`
}

// StationListCacheProvider defines interface for station list caching
type StationListCacheProvider interface {
	GetStations(ctx context.Context) ([]uktides.Station, error)
	SaveStations(ctx context.Context, stations []uktides.Station) error
}

// S3StationCache shares the station list between Lambda instances.
type S3StationCache struct {
	client     S3Client
	bucketName string
	ttl        time.Duration
	clock      clock
}

func NewS3StationCache(client S3Client, cacheConfig *config.CacheConfig) *S3StationCache {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &S3StationCache{
		client:     client,
		bucketName: cacheConfig.StationCacheBucket,
		ttl:        cacheConfig.GetStationListTTL(),
		clock:      realClock{},
	}
}

// GetStations returns the cached list, or nil when missing or expired. The
// stored list is parsed again on the way out.
func (c *S3StationCache) GetStations(ctx context.Context) ([]uktides.Station, error) {
	if c.bucketName == "" {
		return nil, errors.New("empty bucket name")
	}

	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(stationsObjectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting station list from S3: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var record StationListCacheRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding cache record: %w", err)
	}

	if c.clock.Now().Unix() > record.TTL {
		log.Debug().Msg("Station list cache expired")
		return nil, nil
	}

	stations, err := uktides.StationsFromReader(bytes.NewReader(record.Stations))
	if err != nil {
		return nil, fmt.Errorf("parsing cached station list: %w", err)
	}
	return stations, nil
}

// SaveStations saves stations to S3 cache
func (c *S3StationCache) SaveStations(ctx context.Context, stations []uktides.Station) error {
	if c.bucketName == "" {
		return errors.New("empty bucket name")
	}

	collection, err := uktides.MarshalStations(stations)
	if err != nil {
		return fmt.Errorf("encoding stations: %w", err)
	}

	now := c.clock.Now().Unix()
	record := StationListCacheRecord{
		Stations:    collection,
		LastUpdated: now,
		TTL:         now + int64(c.ttl.Seconds()),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(stationsObjectKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	log.Debug().Int("station_count", len(stations)).Msg("Saved station list to S3 cache")
	return nil
}
