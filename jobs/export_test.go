package jobs

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/chezflora/flora-admin/testing"
)

func TestExportTaskPayloadRoundTrip(t *testing.T) {
	requested := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	task, err := NewExportTask(ExportPayload{
		Resource:    "commandes",
		RequestedBy: "marguerite",
		RequestedAt: requested,
	})
	require.NoError(t, err)
	assert.Equal(t, TaskExportCSV, task.Type())

	var payload ExportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "commandes", payload.Resource)
	assert.Equal(t, "marguerite", payload.RequestedBy)
	assert.True(t, payload.RequestedAt.Equal(requested))
}

func TestExportWriteUnionColumns(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exporter := NewExporter(logger, nil, dir, "svc", "secret")

	records := []map[string]any{
		{"id": "1", "nom": "Bouquet", "prix": 12.5},
		{"id": "2", "stock": float64(4), "actif": true},
	}
	path := filepath.Join(dir, "export-produits-test.csv")
	require.NoError(t, exporter.write(path, records))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Header is the sorted union of every key seen in the page set.
	assert.Equal(t, []string{"actif", "id", "nom", "prix", "stock"}, rows[0])
	assert.Equal(t, []string{"", "1", "Bouquet", "12.5", ""}, rows[1])
	assert.Equal(t, []string{"true", "2", "", "", "4"}, rows[2])
}

func TestExportWriteCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exporter := NewExporter(logger, nil, dir, "svc", "secret")

	path := filepath.Join(dir, "nested", "export-devis-test.csv")
	require.NoError(t, exporter.write(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"texte", "texte"},
		{float64(3), "3"},
		{12.5, "12.5"},
		{true, "true"},
		{map[string]any{"id": "7"}, `{"id":"7"}`},
		{[]any{"a", "b"}, `["a","b"]`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatCell(tc.in))
	}
}

func TestExportEndpointsUseTrailingSlashes(t *testing.T) {
	for slug, endpoint := range exportEndpoints {
		assert.NotEmpty(t, slug)
		assert.Equal(t, byte('/'), endpoint[0], "endpoint must be absolute: %s", endpoint)
		assert.Equal(t, byte('/'), endpoint[len(endpoint)-1], "collection endpoints end with a slash: %s", endpoint)
	}
}
