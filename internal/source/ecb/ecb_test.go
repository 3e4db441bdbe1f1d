package ecb_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/source/ecb"
)

const genericData = `<?xml version="1.0" encoding="UTF-8"?>
<message:GenericData xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message" xmlns:generic="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic">
  <message:DataSet>
    <generic:Series>
      <generic:Obs>
        <generic:ObsDimension value="2023-Q1"/>
        <generic:ObsValue value="3500.5"/>
      </generic:Obs>
      <generic:Obs>
        <generic:ObsDimension value="2023-Q2"/>
        <generic:ObsValue value="3512.25"/>
      </generic:Obs>
    </generic:Series>
  </message:DataSet>
</message:GenericData>`

func TestFetch(t *testing.T) {
	t.Parallel()

	// Arrange: a fake data service
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/service/data/MNA/Q.Y.I9", r.URL.Path)
		require.Equal(t, "application/vnd.sdmx.genericdata+xml;version=2.1", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(genericData))
	}))
	t.Cleanup(srv.Close)

	client := ecb.NewClient(ecb.WithBaseURL(srv.URL+"/service/data/"), ecb.WithHTTPClient(srv.Client()))
	require.Equal(t, dataset.XMLAPI, client.Kind())

	// Act
	tb, err := client.Fetch(t.Context(), "MNA/Q.Y.I9")

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"quarter", "value"}, tb.Columns())
	require.Equal(t, [][]string{{"2023-Q1", "3500.5"}, {"2023-Q2", "3512.25"}}, tb.Records())
}

func TestFetch_NotFoundIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No results found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := ecb.NewClient(ecb.WithBaseURL(srv.URL+"/"), ecb.WithHTTPClient(srv.Client()))
	_, err := client.Fetch(t.Context(), "ICP/M.U2")

	var ne *etlerr.NetworkError
	require.True(t, errors.As(err, &ne), "expected NetworkError, got %v", err)
	require.Equal(t, http.StatusNotFound, ne.Status)
	require.True(t, strings.HasSuffix(ne.URL, "/ICP/M.U2"))
}

func TestDecode_CountMismatchIsFormatError(t *testing.T) {
	t.Parallel()

	body := `<a xmlns:generic="g"><generic:ObsDimension value="2023-Q1"/><generic:ObsValue value="1"/><generic:ObsDimension value="2023-Q2"/></a>`
	_, err := ecb.Decode(strings.NewReader(body))
	var fe *etlerr.FormatError
	require.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
}

func TestDecode_BadNumberIsParseError(t *testing.T) {
	t.Parallel()

	body := `<a><ObsDimension value="2023-01"/><ObsValue value="NaN%"/></a>`
	_, err := ecb.Decode(strings.NewReader(body))
	var pe *etlerr.ParseError
	require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
	require.Equal(t, "NaN%", pe.Raw)
}

func TestDecode_MalformedXMLIsFormatError(t *testing.T) {
	t.Parallel()

	_, err := ecb.Decode(strings.NewReader(`<a><ObsDimension value="2023-01">`))
	var fe *etlerr.FormatError
	require.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
	require.Equal(t, "format", etlerr.Kind(err))
}

func TestDecode_DuplicatePeriodLastWins(t *testing.T) {
	t.Parallel()

	// Arrange: 2023-Q1 is revised later in the same message.
	body := `<a>` +
		`<ObsDimension value="2023-Q1"/><ObsValue value="1"/>` +
		`<ObsDimension value="2023-Q2"/><ObsValue value="5"/>` +
		`<ObsDimension value="2023-Q1"/><ObsValue value="2"/>` +
		`</a>`

	// Act
	tb, err := ecb.Decode(strings.NewReader(body))

	// Assert
	require.NoError(t, err)
	require.Equal(t, [][]string{{"2023-Q1", "2"}, {"2023-Q2", "5"}}, tb.Records())
}

func TestDecode_EmptyMessage(t *testing.T) {
	t.Parallel()

	tb, err := ecb.Decode(strings.NewReader(`<message:GenericData xmlns:message="m"/>`))
	require.NoError(t, err)
	require.Equal(t, 0, tb.Len())
}
