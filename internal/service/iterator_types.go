package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator is a source of bucket notification messages.
// pkg/kafkaclient.KafkaConsumer implements it.
type MessageIterator interface {
	// Messages is closed when the source stops.
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads and decodes the object behind one notification record.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedObject pairs a loaded object with the record and message it came
// from. Callers pass it to Iterator.Commit once the object is handled.
type FetchedObject[T any] struct {
	Data    T
	Bucket  string
	Key     string
	Event   notification.Event
	Message kafka.Message

	acks  *messageAcks
	index int
}
