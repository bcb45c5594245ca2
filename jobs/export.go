package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chezflora/flora-admin/internal/flora"
	jobmetrics "github.com/chezflora/flora-admin/internal/jobs"
)

// exportEndpoints maps the export slugs offered by the panel to their API
// collections.
var exportEndpoints = map[string]string{
	"utilisateurs": "/utilisateurs/",
	"commandes":    "/commandes/",
	"produits":     "/produits/",
	"ateliers":     "/ateliers/",
	"abonnements":  "/abonnements/",
	"devis":        "/devis/",
	"paiements":    "/paiements/",
	"articles":     "/articles/",
}

const exportPageSize = 200

// serviceCredentials authenticates the worker itself: exports run under a
// dedicated API account, not under the session of the requesting operator.
type serviceCredentials struct {
	access  string
	refresh string
}

func (c *serviceCredentials) AccessToken() string       { return c.access }
func (c *serviceCredentials) RefreshToken() string      { return c.refresh }
func (c *serviceCredentials) RotateAccess(access string) { c.access = access }
func (c *serviceCredentials) Clear()                    { c.access, c.refresh = "", "" }

// Exporter walks one remote collection and writes it as CSV under dir.
type Exporter struct {
	logger   *slog.Logger
	client   *flora.Client
	dir      string
	username string
	password string
	metrics  *jobmetrics.Metrics
}

// NewExporter constructs an Exporter. username/password are the service
// account the worker signs in with.
func NewExporter(logger *slog.Logger, client *flora.Client, dir, username, password string) *Exporter {
	return &Exporter{
		logger:   logger,
		client:   client,
		dir:      dir,
		username: username,
		password: password,
		metrics:  jobmetrics.NewMetrics(nil),
	}
}

// HandleExport processes TaskExportCSV tasks.
func (e *Exporter) HandleExport(ctx context.Context, t *asynq.Task) error {
	return e.metrics.Track("export_csv").End(e.handleExport(ctx, t))
}

func (e *Exporter) handleExport(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	endpoint, ok := exportEndpoints[payload.Resource]
	if !ok {
		e.logger.Warn("export unknown resource", "resource", payload.Resource)
		return asynq.SkipRetry
	}

	pair, err := e.client.Login(ctx, e.username, e.password)
	if err != nil {
		return fmt.Errorf("export: service login: %w", err)
	}
	ctx = flora.ContextWithCredentials(ctx, &serviceCredentials{access: pair.Access, refresh: pair.Refresh})

	records, err := e.collect(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("export %s: %w", payload.Resource, err)
	}

	name := fmt.Sprintf("export-%s-%s.csv", payload.Resource, time.Now().UTC().Format("20060102-150405"))
	if err := e.write(filepath.Join(e.dir, name), records); err != nil {
		return fmt.Errorf("export %s: %w", payload.Resource, err)
	}
	e.logger.Info("export written",
		"resource", payload.Resource,
		"rows", len(records),
		"file", name,
		"requested_by", payload.RequestedBy)
	return nil
}

// collect pages through the collection until the server count is reached.
func (e *Exporter) collect(ctx context.Context, endpoint string) ([]map[string]any, error) {
	var records []map[string]any
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(exportPageSize)},
		}
		items, total, err := flora.List[map[string]any](ctx, e.client, endpoint, query)
		if err != nil {
			return nil, err
		}
		records = append(records, items...)
		if len(items) == 0 || len(records) >= total {
			return records, nil
		}
	}
}

// write renders the records as CSV. Columns are the sorted union of all
// keys so ragged API payloads still line up.
func (e *Exporter) write(path string, records []map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	keySet := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			keySet[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(keySet))
	for key := range keySet {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, record := range records {
		for i, column := range columns {
			row[i] = formatCell(record[column])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
