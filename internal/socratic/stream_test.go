package socratic

import "testing"

func TestNewStreamConsumerNilWithoutRedis(t *testing.T) {
	if consumer := NewStreamConsumer(nil); consumer != nil {
		t.Error("no Redis client should mean no consumer")
	}
}

func TestStartConsumerGroupNilConsumer(t *testing.T) {
	var consumer *StreamConsumer
	if err := consumer.StartConsumerGroup("session-1"); err == nil {
		t.Error("a nil consumer must refuse to start")
	}
}

func TestPublishEventWithoutRedis(t *testing.T) {
	event, err := NewEvent(EventTimer, TimerPayload{ElapsedSec: 1})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if err := PublishEvent("session-1", event); err == nil {
		t.Error("publishing without Redis must error so callers fall back to local broadcast")
	}
}
