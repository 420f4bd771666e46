package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_feed_requests_total",
		Help: "Total feed page requests",
	}, []string{"source"})
	FeedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_feed_errors_total",
		Help: "Total failed feed page requests",
	}, []string{"source"})
	FeedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chirp_feed_duration_seconds",
		Help:    "Feed page build duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	FeedPageSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chirp_feed_page_size",
		Help:    "Tweets returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})
	TweetReads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chirp_tweet_reads_total",
		Help: "Total single tweet and thread reads",
	})
)

func init() {
	prometheus.MustRegister(FeedRequests, FeedErrors, FeedDuration, FeedPageSize, TweetReads)
}

// ObserveFeedDuration records one feed build duration
func ObserveFeedDuration(start time.Time) {
	FeedDuration.Observe(time.Since(start).Seconds())
}
