package keyvalue

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

const (
	// DefaultPartitionKey is the partition key attribute of the counter table.
	DefaultPartitionKey = "stats"

	countAttribute = "count"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBAdapter.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Ensure DynamoDBAdapter implements the KeyValue interface.
var _ KeyValue = (*DynamoDBAdapter)(nil)

// DynamoDBAdapter stores counters as items of a DynamoDB table.
//
// Each counter is an item whose partition key holds the counter key and whose
// numeric "count" attribute holds the value.
type DynamoDBAdapter struct {
	c            DynamoDBAPI
	table        string
	partitionKey string
}

// NewDynamoDBAdapter creates an adapter for the given table. An empty
// partitionKey selects DefaultPartitionKey.
func NewDynamoDBAdapter(c DynamoDBAPI, table, partitionKey string) *DynamoDBAdapter {
	if c == nil {
		panic("nil dynamodb client")
	}
	if partitionKey == "" {
		partitionKey = DefaultPartitionKey
	}
	return &DynamoDBAdapter{
		c:            c,
		table:        table,
		partitionKey: partitionKey,
	}
}

func (d *DynamoDBAdapter) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.partitionKey: &types.AttributeValueMemberS{Value: key},
	}
}

func parseCount(attrs map[string]types.AttributeValue, key string) (int64, error) {
	av, ok := attrs[countAttribute]
	if !ok {
		return 0, nil
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.Errorf("attribute %q of key %q is not a number", countAttribute, key)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected format or not a number for key %q", key)
	}
	return v, nil
}

// SetCounter sets the counter with the given key to value.
func (d *DynamoDBAdapter) SetCounter(ctx context.Context, key string, value int64) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	_, err := d.c.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(d.table),
		Key:                      d.itemKey(key),
		UpdateExpression:         aws.String("SET #count = :val"),
		ExpressionAttributeNames: map[string]string{"#count": countAttribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":val": &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)},
		},
	})
	return errors.Wrapf(err, "failed to set number for key: %q", key)
}

// GetCounter gets the current value of a counter with a strongly consistent
// read.
func (d *DynamoDBAdapter) GetCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	out, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            d.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get number for key: %q", key)
	}
	return parseCount(out.Item, key)
}

// IncrementCounter atomically adds 1 to the counter and returns the updated
// value. DynamoDB creates the item if it does not exist.
func (d *DynamoDBAdapter) IncrementCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	out, err := d.c.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(d.table),
		Key:                      d.itemKey(key),
		UpdateExpression:         aws.String("ADD #count :val"),
		ExpressionAttributeNames: map[string]string{"#count": countAttribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":val": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to increment value for key %q", key)
	}
	if _, ok := out.Attributes[countAttribute]; !ok {
		return 0, errors.Errorf("no %q attribute returned for key %q", countAttribute, key)
	}
	return parseCount(out.Attributes, key)
}
