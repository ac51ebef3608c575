package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_kafka_published_total",
		Help: "Events written to Kafka.",
	}, []string{"topic"})

	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_kafka_received_total",
		Help: "Messages fetched by consumers.",
	}, []string{"topic", "group"})

	messagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_kafka_failed_total",
		Help: "Messages that were undecodable or exhausted their retries.",
	}, []string{"topic", "group"})

	processingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_kafka_processing_seconds",
		Help:    "Handler time per message, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic", "group"})
)
