package main

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
)

func TestParseBrokers(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "single", raw: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "multiple with spaces", raw: " kafka-1:9092 , kafka-2:9092 ", want: []string{"kafka-1:9092", "kafka-2:9092"}},
		{name: "trailing comma", raw: "kafka:9092,", want: []string{"kafka:9092"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseBrokers(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d brokers, got %d: %v", len(tc.want), len(got), got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("broker %d: expected %s, got %s", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestExtractReplayMessage_OutboxDLQ(t *testing.T) {
	original := json.RawMessage(`{"event_type":"order.placed","order_id":"order-1"}`)
	payload, err := json.Marshal(map[string]any{
		"outbox_id":      "outbox-1",
		"aggregate_type": "order",
		"aggregate_id":   "order-1",
		"event_type":     "order.placed",
		"payload":        original,
		"publish_error":  "kafka: broker unreachable",
	})
	if err != nil {
		t.Fatalf("marshal dlq payload: %v", err)
	}

	value, err := json.Marshal(map[string]any{
		"id":             "outbox-1",
		"aggregate_type": "order",
		"aggregate_id":   "order-1",
		"event_type":     "order.placed",
		"payload":        json.RawMessage(payload),
	})
	if err != nil {
		t.Fatalf("marshal dlq envelope: %v", err)
	}

	msg := &sarama.ConsumerMessage{Value: value}
	replay, ok, err := extractReplayMessage(msg, "marketplace.order.events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected message to be replayable")
	}
	if replay.topic != "marketplace.order.events" {
		t.Errorf("unexpected topic: %s", replay.topic)
	}
	if replay.key != "order-1" {
		t.Errorf("expected key order-1, got %s", replay.key)
	}

	var envelope replayEnvelope
	if err := json.Unmarshal(replay.value, &envelope); err != nil {
		t.Fatalf("unmarshal replay envelope: %v", err)
	}
	if envelope.EventType != "order.placed" {
		t.Errorf("unexpected event type: %s", envelope.EventType)
	}
	if string(envelope.Payload) != string(original) {
		t.Errorf("original payload was not preserved: %s", envelope.Payload)
	}
}

func TestExtractReplayMessage_SkipsNonJSON(t *testing.T) {
	msg := &sarama.ConsumerMessage{Value: []byte("not json at all")}

	if _, ok, err := extractReplayMessage(msg, "marketplace.order.events"); ok || err != nil {
		t.Errorf("expected non-json message to be skipped silently, ok=%v err=%v", ok, err)
	}
}

func TestExtractReplayMessage_MissingOriginalPayload(t *testing.T) {
	value, err := json.Marshal(map[string]any{
		"id":         "outbox-2",
		"event_type": "order.placed",
		"payload":    map[string]any{"outbox_id": "outbox-2"},
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	msg := &sarama.ConsumerMessage{Value: value}
	if _, ok, err := extractReplayMessage(msg, "marketplace.order.events"); ok || err == nil {
		t.Errorf("expected error for dlq message without original payload, ok=%v err=%v", ok, err)
	}
}

func TestPublishReplay_NilProducer(t *testing.T) {
	if err := publishReplay(nil, replayMessage{topic: "t", key: "k"}); err == nil {
		t.Error("expected error for nil producer")
	}
}
