// Package server serves the interactive commit chart: the page, JSON and SVG
// views of the dataset, and a websocket per browser tab that drives the
// slider, brush and hover interactions.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/codefolio/internal/cache"
	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/loader"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/rohankatakam/codefolio/internal/selection"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/rohankatakam/codefolio/internal/temporal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:embed all:web
var webFS embed.FS

const shutdownTimeout = 5 * time.Second

// LoadFunc reads the current line log
type LoadFunc func(ctx context.Context) ([]models.LineRecord, error)

// Dataset is one immutable load of the line log
type Dataset struct {
	Version  uint64
	Commits  []models.Commit
	Lines    int
	LoadedAt time.Time
}

// Options configures a server
type Options struct {
	Config *config.Config
	Logger *logrus.Logger
	// Load defaults to reading Config.Data.Source
	Load  LoadFunc
	Prefs storage.PrefsStore
	Cache *cache.Manager
	// Assets defaults to the embedded page
	Assets fs.FS
}

// Server holds the gin engine and the shared dataset
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	logger  *logrus.Logger
	hub     *Hub
	cache   *cache.Manager
	prefs   storage.PrefsStore
	load    LoadFunc
	layout  chart.Layout
	data    atomic.Pointer[Dataset]
	version atomic.Uint64
}

// New builds the server. The page template is checked for every anchor the
// client script needs; a missing one is a configuration error.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	assets := opts.Assets
	if assets == nil {
		sub, err := fs.Sub(webFS, "web")
		if err != nil {
			return nil, errors.InternalErrorf("embedded page: %v", err)
		}
		assets = sub
	}
	index, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		return nil, errors.ConfigErrorf("page template: %v", err)
	}
	if err := CheckAnchors(index); err != nil {
		return nil, err
	}

	mgr := opts.Cache
	if mgr == nil {
		mgr = cache.NewManager(cfg.Cache.TTL, cfg.Cache.Cleanup, logger)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		hub:    NewHub(logger),
		cache:  mgr,
		prefs:  opts.Prefs,
		load:   opts.Load,
		layout: chart.LayoutFromConfig(cfg.Chart),
	}
	if s.load == nil {
		s.load = func(ctx context.Context) ([]models.LineRecord, error) {
			return loader.Load(ctx, cfg.Data.Source, loader.Options{Strict: cfg.Data.Strict, Logger: logger})
		}
	}
	s.data.Store(&Dataset{})

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger(logger))
	s.engine.RedirectTrailingSlash = false
	s.engine.RedirectFixedPath = false
	s.setupRoutes(assets, index)

	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the reload hub
func (s *Server) Hub() *Hub { return s.hub }

// Dataset returns the dataset currently served
func (s *Server) Dataset() *Dataset { return s.data.Load() }

// Reload reads the line log and swaps in the new dataset. On failure the
// previous dataset keeps being served.
func (s *Server) Reload(ctx context.Context) error {
	start := time.Now()
	lines, err := s.load(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load line log")
		return err
	}

	ds := &Dataset{
		Version:  s.version.Add(1),
		Commits:  temporal.Aggregate(lines, s.cfg.Data.CommitURLBase),
		Lines:    len(lines),
		LoadedAt: time.Now(),
	}
	s.data.Store(ds)
	s.cache.Invalidate()

	s.logger.WithFields(logrus.Fields{
		"version":  ds.Version,
		"lines":    ds.Lines,
		"commits":  len(ds.Commits),
		"duration": time.Since(start),
	}).Info("Loaded dataset")

	s.hub.Broadcast(Notice{Version: ds.Version, Commits: len(ds.Commits)})
	return nil
}

// Run listens on addr and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NetworkError(err, "listen").WithContext("addr", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. When data.watch is set and the
// source is a local file, changes to it trigger a reload.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.WithField("addr", ln.Addr().String()).Info("Serving commit chart")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.NetworkError(err, "serve")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if s.cfg.Data.Watch && isLocalSource(s.cfg.Data.Source) {
		w, err := NewWatcher(s.cfg.Data.Source, 200*time.Millisecond, s.logger)
		if err != nil {
			s.logger.WithError(err).Warn("Not watching line log")
		} else {
			g.Go(func() error {
				return w.Run(gctx, func() {
					_ = s.Reload(gctx)
				})
			})
		}
	}

	return g.Wait()
}

func isLocalSource(source string) bool {
	return source != "" && !strings.Contains(source, "://")
}

// serveEmbedded writes a pre-read asset with the given content type
func serveEmbedded(assets fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(assets, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes(assets fs.FS, index []byte) {
	s.engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	s.engine.GET("/style.css", serveEmbedded(assets, "style.css", "text/css; charset=utf-8"))
	s.engine.GET("/app.js", serveEmbedded(assets, "app.js", "application/javascript; charset=utf-8"))

	s.engine.GET("/healthz", func(c *gin.Context) {
		ds := s.data.Load()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"version":  ds.Version,
			"commits":  len(ds.Commits),
			"lines":    ds.Lines,
			"sessions": s.hub.Subscribers(),
			"cache":    s.cache.Stats(),
		})
	})

	api := s.engine.Group("/api")
	api.GET("/commits", s.handleCommits)
	api.GET("/stats", s.cachedJSON("stats", func(u *page.Update) any {
		return gin.H{
			"progress":     u.Progress,
			"cutoff_label": u.CutoffLabel,
			"summary":      u.Summary,
			"stats":        u.Stats,
		}
	}))
	api.GET("/files", s.cachedJSON("files", func(u *page.Update) any {
		return u.Files
	}))
	api.GET("/breakdown", s.cachedJSON("breakdown", func(u *page.Update) any {
		return gin.H{
			"selected":   u.Selected,
			"count_text": u.CountText,
			"breakdown":  u.Breakdown,
		}
	}))
	api.GET("/theme", s.handleGetTheme)
	api.PUT("/theme", s.handlePutTheme)

	s.engine.GET("/chart.svg", s.handleChart)
	s.engine.GET("/ws", s.handleWebSocket)
}

func (s *Server) handleCommits(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Load().Commits)
}

// viewQuery reads ?progress= and ?brush=
func (s *Server) viewQuery(c *gin.Context) (float64, *selection.Rect, error) {
	progress := s.cfg.Interaction.InitialProgress
	if v := c.Query("progress"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, nil, errors.ValidationErrorf("progress %q is not a number", v)
		}
		progress = p
	}

	var brush *selection.Rect
	if v := c.Query("brush"); v != "" {
		r, err := selection.ParseRect(v)
		if err != nil {
			return 0, nil, err
		}
		brush = &r
	}
	return progress, brush, nil
}

// view runs the pipeline once over the current dataset
func (s *Server) view(progress float64, brush *selection.Rect) (*page.Update, error) {
	ctrl := page.New(s.data.Load().Commits, page.Options{
		Layout:          s.layout,
		InitialProgress: progress,
		Logger:          s.logger,
	})
	if brush == nil {
		return ctrl.Snapshot(), nil
	}
	return ctrl.Dispatch(page.Event{Kind: page.KindBrush, Brush: brush})
}

func brushKey(brush *selection.Rect) string {
	if brush == nil {
		return ""
	}
	return brush.String()
}

// cachedJSON serves one projection of a stateless view, cached per dataset
// version, progress and brush.
func (s *Server) cachedJSON(kind string, project func(u *page.Update) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		progress, brush, err := s.viewQuery(c)
		if err != nil {
			s.fail(c, err)
			return
		}

		key := s.cache.Key(kind, progress, brushKey(brush))
		data, err := s.cache.GetOrRender(key, func() ([]byte, error) {
			u, err := s.view(progress, brush)
			if err != nil {
				return nil, err
			}
			return json.Marshal(project(u))
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

func (s *Server) handleChart(c *gin.Context) {
	progress, brush, err := s.viewQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	key := s.cache.Key("svg", progress, brushKey(brush))
	data, err := s.cache.GetOrRender(key, func() ([]byte, error) {
		u, err := s.view(progress, brush)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := chart.WriteSVG(&buf, u.Frame); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", data)
}

type themeBody struct {
	ColorScheme models.ColorScheme `json:"colorScheme"`
}

func (s *Server) handleGetTheme(c *gin.Context) {
	if s.prefs == nil {
		c.JSON(http.StatusOK, themeBody{ColorScheme: models.ColorSchemeAuto})
		return
	}
	scheme, err := s.prefs.GetColorScheme(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, themeBody{ColorScheme: scheme})
}

func (s *Server) handlePutTheme(c *gin.Context) {
	if s.prefs == nil {
		s.fail(c, errors.ConfigErrorf("no preference store configured"))
		return
	}
	var body themeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, errors.ValidationErrorf("theme body: %v", err))
		return
	}
	if err := s.prefs.SetColorScheme(c.Request.Context(), body.ColorScheme); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// fail maps an error category onto an HTTP status
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrorTypeConfig:
		status = http.StatusServiceUnavailable
	case errors.ErrorTypeDatabase, errors.ErrorTypeNetwork, errors.ErrorTypeExternal:
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Handled request")
	}
}
