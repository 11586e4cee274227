package config

import (
	"context"
	"time"

	"cloud.google.com/go/datastore"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
)

func nopClose() error { return nil }

// OpenStore connects to the configured backend. The returned function
// releases the connection.
func (c Config) OpenStore(ctx context.Context) (keyvalue.KeyValue, func() error, error) {
	switch c.Backend {
	case BackendDynamoDB:
		// Single attempt; failures surface to the caller.
		awsConf, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(1))
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to load AWS configuration")
		}
		client := dynamodb.NewFromConfig(awsConf)
		return keyvalue.NewDynamoDBAdapter(client, c.DynamoDBTable, c.DynamoDBPartitionKey), nopClose, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         c.RedisAddress,
			Password:     c.RedisPassword,
			DB:           0,
			MaxRetries:   0,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		if err := client.WithContext(ctx).Ping().Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "unable to reach Redis")
		}
		return keyvalue.NewRedisAdapter(client), client.Close, nil
	case BackendDatastore:
		client, err := datastore.NewClient(ctx, c.DatastoreProjectID)
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to create Datastore client")
		}
		return keyvalue.NewDatastoreAdapter(client, c.DatastoreKind), client.Close, nil
	case BackendMemory:
		return keyvalue.NewMemoryAdapter(), nopClose, nil
	}
	return nil, nil, errors.Errorf("unknown counter backend %q", c.Backend)
}
