package main

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/fintech-kernel/acctd/internal/infrastructure/eventpublisher"
)

func TestPublisherSink(t *testing.T) {
	log := zerolog.Nop()

	sink := publisherSink("", nil, log)
	if _, ok := sink.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher for empty stream, got %T", sink)
	}

	sink = publisherSink("acctd.events", nil, log)
	if _, ok := sink.(*eventpublisher.RedisStreamPublisher); !ok {
		t.Fatalf("expected redis stream publisher, got %T", sink)
	}
}
