package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
)

type LogMessage struct {
	Level     string            `json:"level"`
	Module    string            `json:"module"`
	Message   string            `json:"message"`
	TraceID   string            `json:"trace_id"`
	Env       string            `json:"env"`
	Timestamp time.Time         `json:"timestamp"`
	Extra     map[string]string `json:"extra"`
}

// RunLogPusher consumes request-log messages from Kafka and bulk
// indexes them into Elasticsearch. It blocks until ctx is cancelled and
// is meant to run in its own goroutine alongside the API server.
func RunLogPusher(ctx context.Context, brokers []string, topic string, esAddrs []string) error {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "es-pusher",
	})
	defer kafkaReader.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: esAddrs})
	if err != nil {
		return err
	}

	log.Println("Starting Kafka to Elasticsearch pusher...")

	const batchSize = 100
	const batchTimeout = 5 * time.Second

	// The blocking read runs in its own goroutine so an idle topic
	// cannot starve the interval flush of a partial batch.
	msgs := make(chan LogMessage)
	go func() {
		defer close(msgs)
		for {
			m, err := kafkaReader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Kafka read error: %v", err)
				continue
			}

			var logMsg LogMessage
			if err := json.Unmarshal(m.Value, &logMsg); err != nil {
				log.Printf("JSON decode error: %v", err)
				continue
			}

			// Auto-fill timestamp if missing
			if logMsg.Timestamp.IsZero() {
				logMsg.Timestamp = time.Now()
			}

			select {
			case msgs <- logMsg:
			case <-ctx.Done():
				return
			}
		}
	}()

	flush := func(batch []LogMessage) {
		var buf bytes.Buffer
		for _, logMsg := range batch {
			docBytes, err := json.Marshal(logMsg)
			if err != nil {
				log.Printf("Marshal error: %v", err)
				continue
			}
			buf.WriteString("{\"index\":{}}\n")
			buf.Write(docBytes)
			buf.WriteString("\n")
		}
		res, err := es.Bulk(bytes.NewReader(buf.Bytes()), es.Bulk.WithIndex("logs"))
		if err != nil {
			log.Printf("Bulk index error: %v", err)
		} else {
			res.Body.Close()
			log.Printf("Batch of %d logs pushed to ES", len(batch))
		}
	}

	return runBatcher(ctx, msgs, flush, batchSize, batchTimeout)
}

// runBatcher accumulates messages and flushes when the batch fills or
// the interval elapses, whichever comes first. The remainder is flushed
// on cancellation or when msgs closes. The slice passed to flush is
// reused afterwards; flush must finish with it before returning.
func runBatcher(ctx context.Context, msgs <-chan LogMessage, flush func([]LogMessage), size int, interval time.Duration) error {
	batch := make([]LogMessage, 0, size)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flushBatch()
			return ctx.Err()
		case <-ticker.C:
			flushBatch()
		case logMsg, ok := <-msgs:
			if !ok {
				flushBatch()
				return ctx.Err()
			}
			batch = append(batch, logMsg)
			if len(batch) >= size {
				flushBatch()
			}
		}
	}
}
