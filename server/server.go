package server

import (
	"errors"
	"math"
	"strconv"
	"time"

	"chirp/db"
	"chirp/feed"
	"chirp/metrics"
	"chirp/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {

	// The feed service handling all reads
	Feeds *feed.Service
}

// Returns a fiber.App instance to be used as an HTTP server for the
// chirp feed
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.New().String() },
	}))
	app.Use(compress.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// The personalized news feed. totalItems (and total_pages) is
	// exact for source=following and approximate for source=for-you.
	app.Get("/api/feed", func(c *fiber.Ctx) error {
		req := feed.FeedRequest{
			UserId: viewerId(c),
			Page:   c.QueryInt("page", 1),
			Limit:  c.QueryInt("limit", 20),
			Source: models.FeedSource(c.Query("source", string(models.SourceForYou))),
		}

		metrics.FeedRequests.WithLabelValues(string(req.Source)).Inc()
		start := time.Now()

		page, err := config.Feeds.GetFeed(c.Context(), req)
		if err != nil {
			metrics.FeedErrors.WithLabelValues(string(req.Source)).Inc()
			return sendError(c, err)
		}

		metrics.ObserveFeedDuration(start)
		metrics.FeedPageSize.Observe(float64(len(page.Tweets)))

		return c.JSON(feedEnvelope("News feed retrieved", page))
	})

	app.Get("/api/tweets/:id", func(c *fiber.Ctx) error {
		tweetId, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tweet id"})
		}

		metrics.TweetReads.Inc()

		tweet, err := config.Feeds.GetTweet(c.Context(), tweetId, viewerId(c))
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": "Tweet retrieved",
			"result":  tweet,
		})
	})

	app.Get("/api/tweets/:id/children", func(c *fiber.Ctx) error {
		tweetId, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tweet id"})
		}

		req := feed.ChildrenRequest{
			TweetId:   tweetId,
			ChildType: models.TweetType(c.QueryInt("type", int(models.TypeComment))),
			UserId:    viewerId(c),
			Page:      c.QueryInt("page", 1),
			Limit:     c.QueryInt("limit", 20),
		}

		metrics.TweetReads.Inc()

		page, err := config.Feeds.GetTweetChildren(c.Context(), req)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(feedEnvelope("Tweet children retrieved", page))
	})

	return app
}

// viewerId reads the requester identity set by the upstream auth
// layer. Absent header means anonymous.
func viewerId(c *fiber.Ctx) int64 {
	id, err := strconv.ParseInt(c.Get("X-User-Id"), 10, 64)
	if err != nil {
		return feed.Anonymous
	}
	return id
}

func feedEnvelope(message string, page *models.FeedPage) fiber.Map {
	return fiber.Map{
		"message": message,
		"result": fiber.Map{
			"tweets":      page.Tweets,
			"total_items": page.TotalItems,
			"total_pages": int(math.Ceil(float64(page.TotalItems) / float64(page.Limit))),
			"page":        page.Page,
			"limit":       page.Limit,
		},
	}
}

func sendError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, feed.ErrInvalidPage),
		errors.Is(err, feed.ErrInvalidLimit),
		errors.Is(err, feed.ErrInvalidSource):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, feed.ErrNotVisible):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	default:
		log.Error("Error handling request ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
