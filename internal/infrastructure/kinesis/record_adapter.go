package kinesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

var ErrMissingField = errors.New("stream image is missing a required attribute")

// DecodeRecord unwraps a Kinesis record carrying a DynamoDB change from the
// events table. ok is false for changes other than inserts.
func DecodeRecord(record events.KinesisEventRecord) (event store.Event, ok bool, err error) {
	var change events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &change); err != nil {
		return store.Event{}, false, fmt.Errorf("failed to unmarshal change record: %w", err)
	}
	return DecodeStreamRecord(change)
}

// DecodeStreamRecord is DecodeRecord for records read straight from
// DynamoDB Streams.
func DecodeStreamRecord(change events.DynamoDBEventRecord) (store.Event, bool, error) {
	if events.DynamoDBOperationType(change.EventName) != events.DynamoDBOperationTypeInsert {
		return store.Event{}, false, nil
	}
	event, err := decodeImage(change.Change.NewImage)
	if err != nil {
		return store.Event{}, false, err
	}
	return event, true, nil
}

func decodeImage(image map[string]events.DynamoDBAttributeValue) (store.Event, error) {
	if image == nil {
		return store.Event{}, fmt.Errorf("%w: image is empty", ErrMissingField)
	}

	str := func(name string) string {
		if v, ok := image[name]; ok && v.DataType() == events.DataTypeString {
			return v.String()
		}
		return ""
	}

	event := store.Event{
		ID:            str("id"),
		AggregateID:   str("aggregate_id"),
		AggregateType: str("aggregate_type"),
		EventType:     str("event_type"),
	}
	for name, value := range map[string]string{"id": event.ID, "aggregate_id": event.AggregateID, "event_type": event.EventType} {
		if value == "" {
			return store.Event{}, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	if data := str("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return store.Event{}, fmt.Errorf("event %s: data is not valid JSON", event.ID)
		}
		event.Data = json.RawMessage(data)
	}

	if created := str("created_at"); created != "" {
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return store.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
		event.Timestamp = t
	}

	v, ok := image["version"]
	if !ok || v.DataType() != events.DataTypeNumber {
		return store.Event{}, fmt.Errorf("%w: version", ErrMissingField)
	}
	version, err := v.Integer()
	if err != nil {
		return store.Event{}, fmt.Errorf("failed to parse version: %w", err)
	}
	event.Version = int(version)

	return event, nil
}

// Decoded pairs an event with the sequence number of the record it came
// from, for reporting partial batch failures.
type Decoded struct {
	SequenceNumber string
	Event          store.Event
}

// DecodeBatch decodes every insert in a Kinesis batch. Records that fail to
// decode are returned as batch item failures rather than aborting the batch.
func DecodeBatch(batch events.KinesisEvent) ([]Decoded, []events.KinesisBatchItemFailure) {
	var (
		decoded  []Decoded
		failures []events.KinesisBatchItemFailure
	)
	for _, record := range batch.Records {
		event, ok, err := DecodeRecord(record)
		if err != nil {
			failures = append(failures, events.KinesisBatchItemFailure{ItemIdentifier: record.Kinesis.SequenceNumber})
			continue
		}
		if ok {
			decoded = append(decoded, Decoded{SequenceNumber: record.Kinesis.SequenceNumber, Event: event})
		}
	}
	return decoded, failures
}
