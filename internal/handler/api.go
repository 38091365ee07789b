package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oddbyte/opm-repo/internal/config"
	"github.com/oddbyte/opm-repo/internal/model"
	"github.com/oddbyte/opm-repo/internal/opm"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DownloadStats records and reports archive downloads
type DownloadStats interface {
	RecordDownload(ctx context.Context, pkg, ext string, size int64) error
	DownloadStats(ctx context.Context) ([]model.DownloadStat, error)
}

// Syncer refreshes the package store from its upstream
type Syncer interface {
	Sync(ctx context.Context) error
}

// Scripts served from the store root
var scripts = []string{"opminstall.sh", "opm.sh"}

// API handles HTTP requests
type API struct {
	cfg          *config.Config
	logger       *zap.Logger
	repo         afero.Fs
	stats        DownloadStats
	mirror       Syncer
	rateLimiter  *RateLimiter
	cacheControl string
}

// NewAPI creates a new API serving the package store repo. stats and
// mirror are optional and may be nil.
func NewAPI(cfg *config.Config, logger *zap.Logger, repo afero.Fs, stats DownloadStats, mirror Syncer) *API {
	return &API{
		cfg:          cfg,
		logger:       logger,
		repo:         repo,
		stats:        stats,
		mirror:       mirror,
		rateLimiter:  NewRateLimiter(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		cacheControl: "public, max-age=" + strconv.FormatInt(int64(cfg.Download.CacheMaxAge/time.Second), 10),
	}
}

// Close releases the API's background resources
func (a *API) Close() {
	a.rateLimiter.Close()
}

// RegisterRoutes registers the API routes
func (a *API) RegisterRoutes(r chi.Router) {
	// Middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(NewCompressor().Handler)

	r.Group(func(r chi.Router) {
		// Forwarded headers are only honored behind a trusted proxy, and
		// never for the admin routes.
		if a.cfg.Server.TrustProxy {
			r.Use(middleware.RealIP)
		}

		r.Get("/", a.index)
		r.With(ContentType("application/json")).Get("/packages.json", a.packageList)
		r.With(ContentType("text/plain")).Get("/packages/{file}", a.packageMetadata)

		// Archives with rate limiting
		r.With(a.rateLimiter.RateLimit, SecureDownload).Get("/packagedata/*", a.packageData)

		for _, name := range scripts {
			r.Get("/"+name, a.script(name))
		}

		r.Get("/healthz", a.health)
	})

	// Admin routes (localhost only)
	r.Route("/admin", func(r chi.Router) {
		r.Use(LocalOnly)
		r.Get("/stats", a.downloadStats)
		r.Post("/sync", a.triggerSync)
	})
}

// scanCatalog lists the store's packages. An unreadable store is logged
// and yields an empty catalog.
func (a *API) scanCatalog(ctx context.Context) (opm.Catalog, error) {
	catalog, err := opm.ScanCatalog(ctx, a.repo, a.cfg.Storage.PackagesDir)
	if err != nil && ctx.Err() == nil {
		a.logger.Warn("package store unreadable",
			zap.String("dir", a.cfg.Storage.PackagesDir),
			zap.Error(err),
		)
	}
	return catalog, err
}

// index renders the human readable package list
func (a *API) index(w http.ResponseWriter, r *http.Request) {
	catalog, _ := a.scanCatalog(r.Context())
	if r.Context().Err() != nil {
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, indexPage{Site: a.cfg.Site, Packages: catalog}); err != nil {
		a.logger.Error("failed to render index", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// packageList returns the machine readable package list
func (a *API) packageList(w http.ResponseWriter, r *http.Request) {
	catalog, _ := a.scanCatalog(r.Context())
	if r.Context().Err() != nil {
		return
	}

	w.Write([]byte(catalog.List()))
}

// packageMetadata serves a metadata file with its artifact fields filled in
func (a *API) packageMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(chi.URLParam(r, "file"), opm.MetadataExt)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !validID(id) {
		http.Error(w, "Package metadata not found", http.StatusNotFound)
		return
	}

	metaPath := path.Join(a.cfg.Storage.PackagesDir, id+opm.MetadataExt)
	if info, err := a.repo.Stat(metaPath); err != nil || info.IsDir() {
		http.Error(w, "Package metadata not found", http.StatusNotFound)
		return
	}

	artifact, err := opm.ResolveArtifact(r.Context(), a.repo, a.cfg.Storage.DataDir, id)
	if errors.Is(err, opm.ErrNotFound) {
		http.Error(w, "Package data not found", http.StatusNotFound)
		return
	}
	if err != nil {
		return
	}

	raw, err := afero.ReadFile(a.repo, metaPath)
	if err != nil {
		a.logger.Error("failed to read package metadata",
			zap.String("package", id),
			zap.Error(err),
		)
		http.Error(w, "Error processing package metadata", http.StatusInternalServerError)
		return
	}

	w.Write([]byte(opm.Materialize(string(raw), artifact)))
}

// packageData serves archive files from the data directory
func (a *API) packageData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	f, err := a.repo.Open(path.Join(a.cfg.Storage.DataDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", a.cacheControl)

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	http.ServeContent(ww, r, info.Name(), info.ModTime(), f)

	if a.stats == nil || r.Method != http.MethodGet || ww.Status() != http.StatusOK {
		return
	}
	id, ext, ok := opm.SplitArtifactName(info.Name())
	if !ok {
		return
	}
	if err := a.stats.RecordDownload(r.Context(), id, ext, info.Size()); err != nil {
		a.logger.Warn("failed to record download",
			zap.String("package", id),
			zap.Error(err),
		)
	}
}

// script serves an installer script from the store root
func (a *API) script(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := afero.ReadFile(a.repo, name)
		if err != nil {
			http.Error(w, "Script not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write(data)
	}
}

// health reports whether the package store can be listed
func (a *API) health(w http.ResponseWriter, r *http.Request) {
	catalog, err := a.scanCatalog(r.Context())

	resp := model.Health{Status: "ok", Packages: len(catalog)}
	status := http.StatusOK
	if err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// downloadStats returns the download counters
func (a *API) downloadStats(w http.ResponseWriter, r *http.Request) {
	if a.stats == nil {
		http.Error(w, "stats disabled", http.StatusNotFound)
		return
	}

	stats, err := a.stats.DownloadStats(r.Context())
	if err != nil {
		a.logger.Error("failed to get download stats", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// triggerSync triggers a mirror sync of the package store
func (a *API) triggerSync(w http.ResponseWriter, r *http.Request) {
	if a.mirror == nil {
		http.Error(w, "mirror disabled", http.StatusNotFound)
		return
	}

	a.logger.Info("manual sync triggered")

	// Start sync in a goroutine to avoid blocking
	go func() {
		if err := a.mirror.Sync(context.Background()); err != nil {
			a.logger.Error("manual sync failed", zap.Error(err))
		} else {
			a.logger.Info("manual sync completed successfully")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "sync started",
		"message": "Package store synchronization has been triggered",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// validID rejects identifiers that could leave the packages directory
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
