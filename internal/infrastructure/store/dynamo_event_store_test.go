package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo answers Query with a fixed page sequence and records puts.
type fakeDynamo struct {
	pages   []*dynamodb.QueryOutput
	queries int
	puts    []*dynamodb.PutItemInput
	putErr  error
	item    map[string]types.AttributeValue
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.queries >= len(f.pages) {
		return &dynamodb.QueryOutput{}, nil
	}
	page := f.pages[f.queries]
	f.queries++
	return page, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.item}, nil
}

func dynamoItem(t *testing.T, e dynamoEvent) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(e)
	require.NoError(t, err)
	return av
}

func TestDynamoEventStore_AppendUsesNextVersion(t *testing.T) {
	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{{
		Items: []map[string]types.AttributeValue{dynamoItem(t, dynamoEvent{AggregateID: "cart-a", Version: 4})},
	}}}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	event, err := es.Append(context.Background(), "cart-a", "Cart", "CartCleared", map[string]string{"cart_id": "cart-a"})

	require.NoError(t, err)
	assert.Equal(t, 5, event.Version)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "events", *fake.puts[0].TableName)
	assert.NotNil(t, fake.puts[0].ConditionExpression)
}

func TestDynamoEventStore_AppendConflict(t *testing.T) {
	fake := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{}}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	_, err := es.Append(context.Background(), "cart-a", "Cart", "CartCleared", nil)

	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestDynamoEventStore_AppendOtherPutError(t *testing.T) {
	fake := &fakeDynamo{putErr: errors.New("throttled")}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	_, err := es.Append(context.Background(), "cart-a", "Cart", "CartCleared", nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}

func TestDynamoEventStore_GetEventsFollowsPages(t *testing.T) {
	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{
		{
			Items: []map[string]types.AttributeValue{
				dynamoItem(t, dynamoEvent{AggregateID: "cart-a", Version: 1, EventType: "ItemAddedToCart", Data: `{}`, CreatedAt: "2026-10-01T00:00:00Z"}),
			},
			LastEvaluatedKey: map[string]types.AttributeValue{"aggregate_id": &types.AttributeValueMemberS{Value: "cart-a"}},
		},
		{
			Items: []map[string]types.AttributeValue{
				dynamoItem(t, dynamoEvent{AggregateID: "cart-a", Version: 2, EventType: "CartCleared", Data: `{}`}),
			},
		},
	}}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	events, err := es.GetEvents(context.Background(), "cart-a")

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ItemAddedToCart", events[0].EventType)
	assert.Equal(t, 2026, events[0].Timestamp.Year())
	assert.Equal(t, 2, events[1].Version)
}

func TestDynamoEventStore_GetSnapshotMissing(t *testing.T) {
	es := NewDynamoEventStore(&fakeDynamo{}, DynamoTables{Events: "events", Snapshots: "snapshots"})

	snap, err := es.GetSnapshot(context.Background(), "cart-a")

	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestDynamoEventStore_SnapshotRoundTrip(t *testing.T) {
	fake := &fakeDynamo{}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	require.NoError(t, es.SaveSnapshot(context.Background(), &Snapshot{
		AggregateID: "cart-a", AggregateType: "Cart", Version: 10, State: []byte(`{"v":10}`),
	}))
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "snapshots", *fake.puts[0].TableName)

	fake.item = fake.puts[0].Item
	snap, err := es.GetSnapshot(context.Background(), "cart-a")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 10, snap.Version)
	assert.JSONEq(t, `{"v":10}`, string(snap.State))
}

func TestDynamoEventStore_RetentionStampsExpiry(t *testing.T) {
	fake := &fakeDynamo{}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots", Retention: 48 * time.Hour})
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	es.now = func() time.Time { return now }

	event, err := es.Append(context.Background(), "cart-a", "Cart", "CartCleared", nil)
	require.NoError(t, err)
	saved := &Snapshot{AggregateID: "cart-a", Version: 1, State: []byte(`{}`)}
	require.NoError(t, es.SaveSnapshot(context.Background(), saved))

	assert.Equal(t, now, event.Timestamp)
	assert.Equal(t, now.Add(48*time.Hour), saved.ExpiresAt)

	fake.item = fake.puts[1].Item
	loaded, err := es.GetSnapshot(context.Background(), "cart-a")
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour), loaded.ExpiresAt)
	want := now.Add(48 * time.Hour).Unix()
	for _, put := range fake.puts {
		var item struct {
			ExpiresAt int64 `dynamodbav:"expires_at"`
		}
		require.NoError(t, attributevalue.UnmarshalMap(put.Item, &item))
		assert.Equal(t, want, item.ExpiresAt, *put.TableName)
	}
}

func TestDynamoEventStore_NoRetentionOmitsExpiry(t *testing.T) {
	fake := &fakeDynamo{}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	_, err := es.Append(context.Background(), "cart-a", "Cart", "CartCleared", nil)

	require.NoError(t, err)
	assert.NotContains(t, fake.puts[0].Item, "expires_at")

	saved := &Snapshot{AggregateID: "cart-a", Version: 1, State: []byte(`{}`)}
	require.NoError(t, es.SaveSnapshot(context.Background(), saved))
	assert.True(t, saved.ExpiresAt.IsZero())
}

func TestDynamoEventStore_BadTimestamp(t *testing.T) {
	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{{
		Items: []map[string]types.AttributeValue{
			dynamoItem(t, dynamoEvent{AggregateID: "cart-a", Version: 1, Data: `{}`, CreatedAt: "yesterday"}),
		},
	}}}
	es := NewDynamoEventStore(fake, DynamoTables{Events: "events", Snapshots: "snapshots"})

	_, err := es.GetEvents(context.Background(), "cart-a")

	assert.Error(t, err)
}
