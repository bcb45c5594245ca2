// Package dashboard renders the landing page of the panel: headline
// counters, activity charts and the low stock table, aggregated from the
// remote API and cached in Redis.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/chezflora/flora-admin/internal/charts"
	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/view"
)

const cacheKey = "flora:dashboard:v1"

// Handler serves GET /admin.
type Handler struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	redis    *redis.Client
	ttl      time.Duration
}

// NewHandler constructs the dashboard handler. A zero ttl disables the
// cache.
func NewHandler(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, rdb *redis.Client, ttl time.Duration) *Handler {
	return &Handler{logger: logger, client: client, renderer: renderer, redis: rdb, ttl: ttl}
}

// snapshot is the cached aggregate.
type snapshot struct {
	Stats       flora.DashboardStats `json:"stats"`
	LowStock    flora.LowStockReport `json:"low_stock"`
	GeneratedAt time.Time            `json:"generated_at"`
}

type lowStockRow struct {
	Name      string
	Stock     int
	Threshold int
}

type dashboardView struct {
	Cards       []view.StatCard
	Charts      []template.HTML
	LowStock    []lowStockRow
	GeneratedAt string
	Err         string
}

// Home renders the dashboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page := dashboardView{}
	snap, err := h.load(r.Context())
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		h.logger.Error("dashboard load", "error", err)
		page.Err = "Erreur lors du chargement du tableau de bord."
	} else {
		page = h.present(snap)
	}
	h.renderer.Page(w, r, http.StatusOK, "dashboard.html", "Tableau de bord", page)
}

// load returns the cached snapshot when fresh, otherwise fans out to the
// API and refills the cache. Auth errors are never cached.
func (h *Handler) load(ctx context.Context) (snapshot, error) {
	if h.redis != nil && h.ttl > 0 {
		raw, err := h.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var snap snapshot
			if json.Unmarshal(raw, &snap) == nil {
				return snap, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			h.logger.Warn("dashboard cache read", "error", err)
		}
	}

	var snap snapshot
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		stats, err := flora.Fetch[flora.DashboardStats](gctx, h.client, "/utilisateurs/dashboard/", nil)
		if err != nil {
			return err
		}
		snap.Stats = stats
		return nil
	})
	group.Go(func() error {
		report, err := flora.Fetch[flora.LowStockReport](gctx, h.client, "/produits/low_stock/", nil)
		if err != nil {
			return err
		}
		snap.LowStock = report
		return nil
	})
	if err := group.Wait(); err != nil {
		return snapshot{}, err
	}
	snap.GeneratedAt = time.Now()

	if h.redis != nil && h.ttl > 0 {
		if raw, err := json.Marshal(snap); err == nil {
			if err := h.redis.Set(ctx, cacheKey, raw, h.ttl).Err(); err != nil {
				h.logger.Warn("dashboard cache write", "error", err)
			}
		}
	}
	return snap, nil
}

func (h *Handler) present(snap snapshot) dashboardView {
	stats := snap.Stats
	page := dashboardView{
		GeneratedAt: snap.GeneratedAt.Format("15:04"),
		Cards: []view.StatCard{
			{Label: "Utilisateurs", Value: strconv.Itoa(stats.Users.Total), Hint: strconv.Itoa(stats.Users.NewLast7Day) + " nouveaux cette semaine"},
			{Label: "Commandes", Value: strconv.Itoa(stats.Commands.Total)},
			{Label: "Revenu total", Value: view.Euro(stats.Commands.TotalRevenue), Hint: view.Euro(stats.Commands.RevenueLast7Days) + " sur 7 jours"},
			{Label: "Produits actifs", Value: strconv.Itoa(stats.Products.Active), Hint: strconv.Itoa(stats.Products.LowStock) + " en stock faible"},
			{Label: "Ateliers actifs", Value: strconv.Itoa(stats.Workshops.Active), Hint: strconv.Itoa(stats.Workshops.TotalParticipants) + " participants"},
			{Label: "Paiements", Value: strconv.Itoa(stats.Payments.Total)},
		},
	}
	if len(stats.Commands.ByStatus) > 0 {
		page.Charts = append(page.Charts, charts.Bar("Commandes par statut", stats.Commands.ByStatus))
	}
	if len(stats.Products.ByCategory) > 0 {
		page.Charts = append(page.Charts, charts.Pie("Produits par catégorie", stats.Products.ByCategory))
	}
	if len(stats.Payments.ByType) > 0 {
		page.Charts = append(page.Charts, charts.Pie("Paiements par type", stats.Payments.ByType))
	}
	for _, item := range snap.LowStock.Products {
		page.LowStock = append(page.LowStock, lowStockRow{
			Name:      item.Name,
			Stock:     item.Stock,
			Threshold: snap.LowStock.Threshold,
		})
	}
	return page
}
