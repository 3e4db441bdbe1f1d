package main

import (
    "errors"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/require"

    "macroagg/internal/config"
    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/export"
)

const fredBody = `{"observations":[
  {"date":"2023-01-01","value":"100"},
  {"date":"2023-04-01","value":"200"},
  {"date":"2023-07-01","value":"."}
]}`

func sdmx(pairs ...string) string {
    var b strings.Builder
    b.WriteString(`<message:GenericData xmlns:message="m" xmlns:generic="g"><message:DataSet><generic:Series>`)
    for i := 0; i+1 < len(pairs); i += 2 {
        fmt.Fprintf(&b, `<generic:Obs><generic:ObsDimension value="%s"/><generic:ObsValue value="%s"/></generic:Obs>`, pairs[i], pairs[i+1])
    }
    b.WriteString(`</generic:Series></message:DataSet></message:GenericData>`)
    return b.String()
}

func fakeAPIs(t *testing.T, ecbStatus int) *httptest.Server {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch {
        case r.URL.Path == "/fred":
            if r.URL.Query().Get("api_key") != "test-key" {
                w.WriteHeader(http.StatusForbidden)
                return
            }
            _, _ = io.WriteString(w, fredBody)
        case strings.HasPrefix(r.URL.Path, "/ecb/ICP/"):
            _, _ = io.WriteString(w, sdmx("2023-01", "2", "2023-02", "4", "2023-04", "3"))
        case strings.HasPrefix(r.URL.Path, "/ecb/"):
            if ecbStatus != http.StatusOK {
                w.WriteHeader(ecbStatus)
                return
            }
            _, _ = io.WriteString(w, sdmx("2023-Q1", "100", "2023-Q2", "200"))
        default:
            http.NotFound(w, r)
        }
    }))
    t.Cleanup(srv.Close)
    return srv
}

func testConfig(t *testing.T, srv *httptest.Server) config.Config {
    t.Helper()
    dir := t.TempDir()
    require.NoError(t, os.MkdirAll(filepath.Join(dir, "csv_data"), 0o755))
    require.NoError(t, os.WriteFile(filepath.Join(dir, "csv_data", "DEXUSEU.csv"),
        []byte("observation_date,DEXUSEU\n2023-01-02,1.0\n2023-02-01,1.5\n2023-04-03,1.25\n2023-04-04,\n"), 0o600))

    cfg := config.Default()
    cfg.APIKey = "test-key"
    cfg.FRED.BaseURL = srv.URL + "/fred"
    cfg.FRED.MaxRequestsPerMinute = 0
    cfg.ECB.BaseURL = srv.URL + "/ecb/"
    cfg.Files.Root = dir
    out := filepath.Join(dir, "outputs")
    cfg.Output.CSVPath = filepath.Join(out, "csv", "result.csv")
    cfg.Output.ParquetPath = filepath.Join(out, "parquet", "result.parquet")
    cfg.Output.XLSXPath = filepath.Join(out, "xlsx", "result.xlsx")
    cfg.Output.GraphDir = filepath.Join(out, "graph")
    cfg.Metrics.TextfilePath = filepath.Join(out, "metrics", "macroagg.prom")
    return cfg
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRun_WritesEverySink(t *testing.T) {
    t.Parallel()

    // Arrange
    srv := fakeAPIs(t, http.StatusOK)
    cfg := testConfig(t, srv)

    // Act
    err := run(t.Context(), cfg, discard())

    // Assert
    require.NoError(t, err)
    wide, err := export.ReadCSV(cfg.Output.CSVPath)
    require.NoError(t, err)
    require.Equal(t, dataset.OutputColumns(), wide.Columns())
    require.Equal(t, [][]string{
        {"2023-Q1", "1.25", "100", "100", "100", "100", "3", "125", "125"},
        {"2023-Q2", "1.25", "200", "200", "200", "200", "3", "250", "250"},
    }, wide.Records())

    fromParquet, err := export.ReadParquet(cfg.Output.ParquetPath)
    require.NoError(t, err)
    require.Equal(t, wide.Records(), fromParquet.Records())

    for _, p := range []string{
        cfg.Output.XLSXPath,
        filepath.Join(cfg.Output.GraphDir, "inflation.png"),
        filepath.Join(cfg.Output.GraphDir, "gdp.png"),
        filepath.Join(cfg.Output.GraphDir, "debt.png"),
        cfg.Metrics.TextfilePath,
    } {
        _, err := os.Stat(p)
        require.NoError(t, err, p)
    }
}

func TestRun_MissingAPIKeyFailsBeforeFetching(t *testing.T) {
    t.Parallel()

    var hits int
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
    t.Cleanup(srv.Close)
    cfg := testConfig(t, srv)
    cfg.APIKey = ""

    err := run(t.Context(), cfg, discard())
    var ce *etlerr.ConfigError
    require.True(t, errors.As(err, &ce), "expected ConfigError, got %v", err)
    require.Zero(t, hits)
    _, statErr := os.Stat(cfg.Output.CSVPath)
    require.True(t, os.IsNotExist(statErr))
}

func TestRun_FailureWritesNothing(t *testing.T) {
    t.Parallel()

    srv := fakeAPIs(t, http.StatusServiceUnavailable)
    cfg := testConfig(t, srv)

    err := run(t.Context(), cfg, discard())
    var ne *etlerr.NetworkError
    require.True(t, errors.As(err, &ne), "expected NetworkError, got %v", err)
    require.Equal(t, http.StatusServiceUnavailable, ne.Status)
    var de *etlerr.DatasetError
    require.True(t, errors.As(err, &de))
    require.Equal(t, "extract", de.Stage)

    for _, p := range []string{cfg.Output.CSVPath, cfg.Output.ParquetPath, cfg.Output.XLSXPath} {
        _, statErr := os.Stat(p)
        require.True(t, os.IsNotExist(statErr), p)
    }
}
