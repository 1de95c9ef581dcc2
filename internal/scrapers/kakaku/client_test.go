package kakaku

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memband/internal/components/telemetry"
	"memband/lib/htmlutil"
	"memband/lib/restyutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func newTestClient(t *testing.T, template string, tel telemetry.API) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		URLTemplate: template,
		Timeout:     5 * time.Second,
		UserAgent:   "memband-test",
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestNewClientRequiresPlaceholder(t *testing.T) {
	_, err := NewClient(ClientOptions{URLTemplate: "https://kakaku.com/pc/pc-memory/itemlist.aspx"}, &telemetry.Recorder{})
	require.Error(t, err)
}

func TestPageURL(t *testing.T) {
	client := newTestClient(t, "https://kakaku.com/pc/pc-memory/itemlist.aspx?pdf_Spec105=1&pdf_so=e2&pdf_vi=d&pdf_pg={page}", &telemetry.Recorder{})

	link, err := client.PageURL(3)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://kakaku.com/pc/pc-memory/itemlist.aspx?pdf_Spec105=1&pdf_so=e2&pdf_vi=d&pdf_pg=3", link)

	_, err = client.PageURL(0)
	require.Error(t, err)
	_, err = client.PageURL(-1)
	require.Error(t, err)
}

func TestFetchPage(t *testing.T) {
	var requested []string
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Query().Get("pdf_pg"))
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(listingPageTest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/itemlist.aspx?pdf_pg={page}", &telemetry.Recorder{})
	doc, err := client.FetchPage(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"2"}, requested)
	require.Equal(t, "memband-test", userAgent)
	require.Equal(t, 6, doc.Find(testSelectors.Names).Length())
}

func TestFetchPageWithDumpOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(listingPageTest)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(ClientOptions{
		URLTemplate: server.URL + "/itemlist.aspx?pdf_pg={page}",
		Timeout:     5 * time.Second,
		DumpOutput:  output,
	}, &telemetry.Recorder{})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := client.FetchPage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 6, doc.Find(testSelectors.Names).Length())

	dump, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, string(dump), "GET "+server.URL+"/itemlist.aspx?pdf_pg=1")
	require.Contains(t, string(dump), "---- RESPONSE ----")
}

func TestFetchPageShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes(listingPageTest)
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write(encoded)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/?pdf_pg={page}", &telemetry.Recorder{})
	doc, err := client.FetchPage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	names := htmlutil.CellTexts(doc.Find(testSelectors.Names))
	require.Len(t, names, 6)
	require.Equal(t, "ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]", names[0])
}

func TestFetchPageStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tel := &telemetry.Recorder{}
	client := newTestClient(t, server.URL+"/?pdf_pg={page}", tel)
	_, err := client.FetchPage(context.Background(), 1)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "%v", err)
	require.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
	require.Nil(t, netErr.Err)
	require.Contains(t, tel.IDs("broken"), "kakaku_scraper: client.fetch-page")
}

func TestFetchPageUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	template := server.URL + "/?pdf_pg={page}"
	server.Close()

	client := newTestClient(t, template, &telemetry.Recorder{})
	_, err := client.FetchPage(context.Background(), 1)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "%v", err)
	require.Equal(t, 0, netErr.StatusCode)
	require.Error(t, netErr.Err)
}

func TestFetchPageInvalidIndex(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1/?pdf_pg={page}", &telemetry.Recorder{})
	_, err := client.FetchPage(context.Background(), 0)
	require.Error(t, err)

	var netErr *NetworkError
	require.False(t, errors.As(err, &netErr))
}
