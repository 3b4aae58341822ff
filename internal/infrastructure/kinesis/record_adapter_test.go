package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartImage(id string, version string) map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":             events.NewStringAttribute(id),
		"aggregate_id":   events.NewStringAttribute("cart-sess-1"),
		"aggregate_type": events.NewStringAttribute("Cart"),
		"event_type":     events.NewStringAttribute("ItemAddedToCart"),
		"data":           events.NewStringAttribute(`{"product_id":"A","quantity":1}`),
		"created_at":     events.NewStringAttribute("2024-01-15T10:30:00.123456789Z"),
		"version":        events.NewNumberAttribute(version),
		"gsi1pk":         events.NewStringAttribute("events"),
	}
}

func kinesisRecord(t *testing.T, seq string, change events.DynamoDBEventRecord) events.KinesisEventRecord {
	t.Helper()
	data, err := json.Marshal(change)
	require.NoError(t, err)
	return events.KinesisEventRecord{
		EventID: "shardId-000:" + seq,
		Kinesis: events.KinesisRecord{Data: data, SequenceNumber: seq},
	}
}

func insert(image map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventName: string(events.DynamoDBOperationTypeInsert),
		Change:    events.DynamoDBStreamRecord{NewImage: image},
	}
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name    string
		image   map[string]events.DynamoDBAttributeValue
		wantErr bool
	}{
		{name: "valid event", image: cartImage("event-123", "4")},
		{name: "nil image", image: nil, wantErr: true},
		{
			name:    "missing required fields",
			image:   map[string]events.DynamoDBAttributeValue{"id": events.NewStringAttribute("event-123")},
			wantErr: true,
		},
		{
			name: "bad version",
			image: func() map[string]events.DynamoDBAttributeValue {
				img := cartImage("event-123", "1")
				img["version"] = events.NewNumberAttribute("one")
				return img
			}(),
			wantErr: true,
		},
		{
			name: "invalid data",
			image: func() map[string]events.DynamoDBAttributeValue {
				img := cartImage("event-123", "1")
				img["data"] = events.NewStringAttribute(`{`)
				return img
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decodeImage(tt.image)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "event-123", event.ID)
			assert.Equal(t, "cart-sess-1", event.AggregateID)
			assert.Equal(t, "Cart", event.AggregateType)
			assert.Equal(t, "ItemAddedToCart", event.EventType)
			assert.JSONEq(t, `{"product_id":"A","quantity":1}`, string(event.Data))
			assert.Equal(t, 4, event.Version)
			assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC), event.Timestamp)
		})
	}
}

func TestDecodeStreamRecord(t *testing.T) {
	t.Run("INSERT event converts successfully", func(t *testing.T) {
		event, ok, err := DecodeStreamRecord(insert(cartImage("event-123", "1")))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "event-123", event.ID)
	})

	for _, op := range []events.DynamoDBOperationType{events.DynamoDBOperationTypeModify, events.DynamoDBOperationTypeRemove} {
		t.Run(string(op)+" event is skipped", func(t *testing.T) {
			_, ok, err := DecodeStreamRecord(events.DynamoDBEventRecord{EventName: string(op)})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	event, ok, err := DecodeRecord(kinesisRecord(t, "100", insert(cartImage("event-123", "2"))))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, event.Version)
}

func TestDecodeBatch(t *testing.T) {
	batch := events.KinesisEvent{
		Records: []events.KinesisEventRecord{
			kinesisRecord(t, "1", insert(cartImage("event-1", "1"))),
			kinesisRecord(t, "2", events.DynamoDBEventRecord{EventName: "MODIFY"}),
			{EventID: "3", Kinesis: events.KinesisRecord{SequenceNumber: "3", Data: []byte("invalid json")}},
			kinesisRecord(t, "4", insert(cartImage("event-2", "2"))),
		},
	}

	decoded, failures := DecodeBatch(batch)

	require.Len(t, decoded, 2)
	assert.Equal(t, "1", decoded[0].SequenceNumber)
	assert.Equal(t, "event-1", decoded[0].Event.ID)
	assert.Equal(t, "event-2", decoded[1].Event.ID)
	assert.Equal(t, []events.KinesisBatchItemFailure{{ItemIdentifier: "3"}}, failures)
}
