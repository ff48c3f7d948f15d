// Package api serves the grouped reminder projection over HTTP, with a
// server-sent event stream that mirrors every projection change.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/observe"
	"github.com/julianstephens/waterme/internal/projection"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/utils"
)

type Server struct {
	store  storage.Provider
	col    *source.Collection
	gedeg  *projection.Gedeg
	icons  *iconstore.Store
	events observe.Notifier[projection.Change]
	engine *gin.Engine
	loc    *time.Location
	now    func() time.Time
	log    *log.Logger
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds the server and starts observing the projection. icons may be
// nil, in which case icon routes answer 404.
func New(store storage.Provider, col *source.Collection, icons *iconstore.Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		col:   col,
		icons: icons,
		loc:   time.Local,
		now:   time.Now,
		log:   logger.For("api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	settings, err := store.GetSettings()
	if err != nil {
		s.log.Warn("failed to read settings, using defaults", "err", err)
		settings = models.DefaultSettings()
	}
	if loc, err := utils.LoadLocation(settings.Timezone); err == nil {
		s.loc = loc
	}

	s.gedeg = projection.New(col,
		projection.WithClock(s.localNow),
		projection.WithFirstWeekday(settings.FirstWeekday()),
		projection.WithLogger(s.log),
	)
	s.gedeg.SetObserver(func(c projection.Change) { s.events.Emit(c) })

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) localNow() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.GET("/events", s.streamEvents)
		api.GET("/sections", s.getSections)
		api.GET("/badge", s.getBadge)
		api.GET("/plan", s.getPlan)
		api.POST("/perform", s.performMany)

		reminders := api.Group("/reminders")
		{
			reminders.GET("/:id", s.getReminder)
			reminders.POST("/:id/perform", s.performOne)
		}

		vessels := api.Group("/vessels")
		{
			vessels.GET("", s.getVessels)
			vessels.GET("/:id/icon", s.getIcon)
			vessels.PUT("/:id/icon", s.putIcon)
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request", "method", c.Request.Method, "path", c.FullPath(),
			"status", c.Writer.Status(), "took", time.Since(start))
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Tick re-buckets the projection, for example after midnight.
func (s *Server) Tick() {
	s.gedeg.Tick()
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops observing the projection.
func (s *Server) Close() {
	s.gedeg.Close()
}
