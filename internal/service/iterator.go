// Package service turns bucket notifications into loaded result objects.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// Iterator reads notification messages, loads every object they reference
// and yields it. Messages that reference nothing of interest, or that cannot
// be decoded, are committed and dropped. A message is yielded only when all
// of its objects load; otherwise none of them are and the message is left
// uncommitted so it is delivered again.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	match       func(key string) bool
}

// NewIterator builds an Iterator. A nil match accepts every key.
func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T], match func(key string) bool) *Iterator[T] {
	if match == nil {
		match = func(string) bool { return true }
	}
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		match:       match,
	}
}

// Objects streams loaded objects until the message source closes or ctx is
// canceled.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for {
			var msg kafka.Message
			var ok bool
			select {
			case <-ctx.Done():
				return
			case msg, ok = <-it.msgIterator.Messages():
				if !ok {
					return
				}
			}

			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				log.Printf("Error unmarshalling notification: %v", err)
				it.commit(ctx, msg)
				continue
			}

			objects, err := it.load(ctx, msg, info)
			if err != nil {
				log.Printf("Leaving message at offset %d uncommitted: %v", msg.Offset, err)
				continue
			}
			if len(objects) == 0 {
				it.commit(ctx, msg)
				continue
			}
			for _, obj := range objects {
				select {
				case out <- obj:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// load fetches every matching record of one message, stopping at the first
// failure.
func (it *Iterator[T]) load(ctx context.Context, msg kafka.Message, info notification.Info) ([]*FetchedObject[T], error) {
	var objects []*FetchedObject[T]
	for _, event := range info.Records {
		key, err := url.QueryUnescape(event.S3.Object.Key)
		if err != nil {
			log.Printf("Error decoding object key %q: %v", event.S3.Object.Key, err)
			continue
		}
		if !it.match(key) {
			continue
		}
		data, err := it.loader(ctx, event.S3.Bucket.Name, key)
		if err != nil {
			return nil, fmt.Errorf("load object %q: %w", key, err)
		}
		objects = append(objects, &FetchedObject[T]{Data: data, Bucket: event.S3.Bucket.Name, Key: key, Event: event, Message: msg})
	}

	acks := &messageAcks{left: len(objects), acked: make([]bool, len(objects))}
	for i, obj := range objects {
		obj.acks, obj.index = acks, i
	}
	return objects, nil
}

// Commit acknowledges obj. The message it came from is committed once every
// object of that message has been.
func (it *Iterator[T]) Commit(ctx context.Context, obj *FetchedObject[T]) error {
	if obj.acks != nil && !obj.acks.ack(obj.index) {
		return nil
	}
	return it.msgIterator.CommitOffset(ctx, obj.Message)
}

// messageAcks tracks which objects of one message are still unhandled.
type messageAcks struct {
	mu    sync.Mutex
	left  int
	acked []bool
}

// ack marks object i handled and reports whether it was the last one.
func (a *messageAcks) ack(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.acked[i] {
		return false
	}
	a.acked[i] = true
	a.left--
	return a.left == 0
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		log.Printf("Failed to commit offset: %v", err)
	}
}
