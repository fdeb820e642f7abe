package socratic

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionHub is implemented by the WebSocket layer to deliver events to
// clients attached to a session.
type SessionHub interface {
	BroadcastToSession(sessionID string, event *Event)
}

// StreamConsumer reads a session's Redis Stream through a consumer group and
// forwards events to the hub.
type StreamConsumer struct {
	rdb          *redis.Client
	consumerName string
	hub          SessionHub
}

// NewStreamConsumer creates a consumer bound to the hub. Returns nil when
// Redis is not available; callers treat a nil consumer as "local only".
func NewStreamConsumer(hub SessionHub) *StreamConsumer {
	client := GetRedisClient()
	if client == nil {
		return nil
	}

	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("consumer-%s-%d", hostname, os.Getpid())

	return &StreamConsumer{
		rdb:          client,
		consumerName: consumerName,
		hub:          hub,
	}
}

// StartConsumerGroup starts consuming events for one session.
func (sc *StreamConsumer) StartConsumerGroup(sessionID string) error {
	if sc == nil || sc.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	streamKey := streamKey(sessionID)
	groupName := fmt.Sprintf("socratic:%s:group", sessionID)

	err := sc.rdb.XGroupCreateMkStream(ctx, streamKey, groupName, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		// The consume loop still starts; reads surface the real problem.
		log.Printf("failed to create consumer group %s: %v", groupName, err)
	}

	go sc.consumeLoop(sessionID, streamKey, groupName)

	return nil
}

func (sc *StreamConsumer) consumeLoop(sessionID, streamKey, groupName string) {
	for {
		streams, err := sc.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    groupName,
			Consumer: sc.consumerName,
			Streams:  []string{streamKey, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				if err := sc.processMessage(sessionID, message); err != nil {
					continue
				}
				sc.rdb.XAck(ctx, streamKey, groupName, message.ID)
			}
		}
	}
}

func (sc *StreamConsumer) processMessage(sessionID string, message redis.XMessage) error {
	eventData, ok := message.Values["data"].(string)
	if !ok {
		return fmt.Errorf("invalid message format: missing data field")
	}

	event, err := UnmarshalEvent(eventData)
	if err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	sc.hub.BroadcastToSession(sessionID, event)
	return nil
}

// PublishEvent appends an event to the session's stream. History is bounded
// so abandoned sessions cannot grow without limit.
func PublishEvent(sessionID string, event *Event) error {
	client := GetRedisClient()
	if client == nil {
		return fmt.Errorf("Redis client not available")
	}

	eventData, err := MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(sessionID),
		Values: map[string]interface{}{
			"data": eventData,
		},
		MaxLen: 10000,
		Approx: true,
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func streamKey(sessionID string) string {
	return fmt.Sprintf("socratic:%s:events", sessionID)
}
