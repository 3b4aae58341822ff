package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// streamIndex is the GSI that orders every event of the table for rebuilds.
const (
	streamIndex     = "GSI1"
	streamPartition = "EVENTS"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoEventStore.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoTables names the tables a DynamoEventStore writes to. Retention,
// when positive, stamps every item with an expires_at attribute so the
// table TTL drops carts of sessions that never came back.
type DynamoTables struct {
	Events    string
	Snapshots string
	Retention time.Duration
}

// DynamoEventStore keeps session cart events in DynamoDB. The table's
// Kinesis stream feeds the projector, so Append publishes nothing itself.
type DynamoEventStore struct {
	client DynamoAPI
	tables DynamoTables
	now    func() time.Time
}

type dynamoEvent struct {
	AggregateID   string `dynamodbav:"aggregate_id"`
	Version       int    `dynamodbav:"version"`
	ID            string `dynamodbav:"id"`
	AggregateType string `dynamodbav:"aggregate_type"`
	EventType     string `dynamodbav:"event_type"`
	Data          string `dynamodbav:"data"`
	CreatedAt     string `dynamodbav:"created_at"`
	Stream        string `dynamodbav:"gsi1pk"`
	ExpiresAt     int64  `dynamodbav:"expires_at,omitempty"`
}

type dynamoSnapshot struct {
	AggregateID   string `dynamodbav:"aggregate_id"`
	AggregateType string `dynamodbav:"aggregate_type"`
	Version       int    `dynamodbav:"version"`
	State         string `dynamodbav:"state"`
	CreatedAt     string `dynamodbav:"created_at"`
	ExpiresAt     int64  `dynamodbav:"expires_at,omitempty"`
}

func NewDynamoEventStore(client DynamoAPI, tables DynamoTables) *DynamoEventStore {
	return &DynamoEventStore{client: client, tables: tables, now: time.Now}
}

func (es *DynamoEventStore) expiry(from time.Time) int64 {
	if es.tables.Retention <= 0 {
		return 0
	}
	return from.Add(es.tables.Retention).Unix()
}

func (es *DynamoEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	version, err := es.latestVersion(ctx, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to read version of %s: %w", aggregateID, err)
	}

	event, err := newEvent(aggregateID, aggregateType, eventType, data, version+1)
	if err != nil {
		return nil, err
	}
	event.Timestamp = es.now().UTC()

	item, err := attributevalue.MarshalMap(dynamoEvent{
		AggregateID:   event.AggregateID,
		Version:       event.Version,
		ID:            event.ID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Data:          string(event.Data),
		CreatedAt:     event.Timestamp.Format(time.RFC3339Nano),
		Stream:        streamPartition,
		ExpiresAt:     es.expiry(event.Timestamp),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = es.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(es.tables.Events),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(aggregate_id) AND attribute_not_exists(version)"),
	})
	var ccf *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &ccf):
		return nil, fmt.Errorf("%w: %s v%d", ErrVersionConflict, aggregateID, event.Version)
	case err != nil:
		return nil, fmt.Errorf("failed to put event: %w", err)
	}
	return &event, nil
}

// latestVersion reads the highest stored version, 0 for a new cart.
func (es *DynamoEventStore) latestVersion(ctx context.Context, aggregateID string) (int, error) {
	out, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tables.Events),
		KeyConditionExpression: aws.String("aggregate_id = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: aggregateID},
		},
		ScanIndexForward:     aws.Bool(false),
		Limit:                aws.Int32(1),
		ProjectionExpression: aws.String("version"),
	})
	if err != nil || len(out.Items) == 0 {
		return 0, err
	}

	var head struct {
		Version int `dynamodbav:"version"`
	}
	if err := attributevalue.UnmarshalMap(out.Items[0], &head); err != nil {
		return 0, err
	}
	return head.Version, nil
}

func (es *DynamoEventStore) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	return es.GetEventsFromVersion(ctx, aggregateID, 0)
}

func (es *DynamoEventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error) {
	return es.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tables.Events),
		KeyConditionExpression: aws.String("aggregate_id = :aid AND version > :ver"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: aggregateID},
			":ver": &types.AttributeValueMemberN{Value: strconv.Itoa(fromVersion)},
		},
		ScanIndexForward: aws.Bool(true),
	})
}

// GetAllEvents walks the stream index. Only rebuilds use it.
func (es *DynamoEventStore) GetAllEvents(ctx context.Context) ([]Event, error) {
	return es.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tables.Events),
		IndexName:              aws.String(streamIndex),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: streamPartition},
		},
		ScanIndexForward: aws.Bool(true),
	})
}

func (es *DynamoEventStore) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]Event, error) {
	events := []Event{}
	pages := dynamodb.NewQueryPaginator(es.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
		for _, item := range page.Items {
			e, err := decodeDynamoEvent(item)
			if err != nil {
				return nil, err
			}
			events = append(events, e)
		}
	}
	return events, nil
}

func decodeDynamoEvent(item map[string]types.AttributeValue) (Event, error) {
	var de dynamoEvent
	if err := attributevalue.UnmarshalMap(item, &de); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	ts, err := parseTimestamp(de.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("event %s v%d: %w", de.AggregateID, de.Version, err)
	}
	return Event{
		ID:            de.ID,
		AggregateID:   de.AggregateID,
		AggregateType: de.AggregateType,
		EventType:     de.EventType,
		Data:          json.RawMessage(de.Data),
		Timestamp:     ts,
		Version:       de.Version,
	}, nil
}

// parseTimestamp accepts an empty value for items written without one.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// SaveSnapshot replaces the cart's snapshot. It shares the events' expiry so
// a snapshot never outlives the history it summarizes.
func (es *DynamoEventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	expiresAt := es.expiry(es.now())
	item, err := attributevalue.MarshalMap(dynamoSnapshot{
		AggregateID:   snapshot.AggregateID,
		AggregateType: snapshot.AggregateType,
		Version:       snapshot.Version,
		State:         string(snapshot.State),
		CreatedAt:     snapshot.CreatedAt.Format(time.RFC3339Nano),
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if _, err := es.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(es.tables.Snapshots),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	if expiresAt > 0 {
		snapshot.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	}
	return nil
}

func (es *DynamoEventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	out, err := es.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(es.tables.Snapshots),
		Key: map[string]types.AttributeValue{
			"aggregate_id": &types.AttributeValueMemberS{Value: aggregateID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var ds dynamoSnapshot
	if err := attributevalue.UnmarshalMap(out.Item, &ds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	createdAt, err := parseTimestamp(ds.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", aggregateID, err)
	}
	snap := &Snapshot{
		AggregateID:   ds.AggregateID,
		AggregateType: ds.AggregateType,
		Version:       ds.Version,
		State:         json.RawMessage(ds.State),
		CreatedAt:     createdAt,
	}
	if ds.ExpiresAt > 0 {
		snap.ExpiresAt = time.Unix(ds.ExpiresAt, 0).UTC()
	}
	return snap, nil
}
