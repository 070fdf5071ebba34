package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadCreates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatd_store_threads_created_total",
		Help: "Number of threads created.",
	})
	threadDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatd_store_threads_deleted_total",
		Help: "Number of threads deleted.",
	})
	messageAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatd_store_messages_appended_total",
		Help: "Number of messages appended across all threads.",
	})
	storeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatd_store_errors_total",
		Help: "Number of storage operations that failed.",
	})
)
