package importer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/cdm-migrate/internal/contentdm"
)

// fileServer fakes the CONTENTdm file endpoint. Responses are keyed by
// "<key>/<filename>"; unknown files answer with the not found body.
type fileServer struct {
	mu       sync.Mutex
	files    map[string]string
	statuses map[string]int
	requests []string
}

func newFileServer(t *testing.T) (*fileServer, *contentdm.Client) {
	t.Helper()
	fs := &fileServer{files: map[string]string{}, statuses: map[string]int{}}
	server := httptest.NewServer(fs)
	t.Cleanup(server.Close)

	client := contentdm.NewClientDoer(contentdm.Options{FileURL: server.URL + "/files/"}, server.Client(), server.Client())
	return fs, client
}

func (fs *fileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// /files/<alias>/id/<key>/filename/<name>
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/files/"), "/")
	if len(parts) != 5 {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}
	id := parts[2] + "/" + parts[4]

	fs.mu.Lock()
	fs.requests = append(fs.requests, id)
	body, ok := fs.files[id]
	status := fs.statuses[id]
	fs.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		w.Write([]byte("error page"))
		return
	}
	if !ok {
		w.Write([]byte(contentdm.NotFoundBody))
		return
	}
	w.Write([]byte(body))
}

func (fs *fileServer) requestCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.requests)
}

func writeExport(t *testing.T, dir, name, doc string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const twoPageExport = `<?xml version="1.0" encoding="UTF-8"?>
<collection>
  <record>
    <cdmid>5</cdmid>
    <title>Atlas</title>
    <dmrecord>5</dmrecord>
    <structure>
      <type>Document</type>
      <page><pagetitle>Front</pagetitle><pagefile>101.jpg</pagefile><pageptr>101</pageptr></page>
      <page><pagetitle>Back</pagetitle><pagefile>102.jpg</pagefile><pageptr>102</pageptr></page>
    </structure>
  </record>
</collection>
`

func TestImporter_CompoundObject(t *testing.T) {
	fs, client := newFileServer(t)
	fs.files["101/000005_000001.jpg"] = "front-bytes"
	fs.files["102/000005_000002.jpg"] = "back-bytes"

	in := t.TempDir()
	out := t.TempDir()
	writeExport(t, in, "maps_structure_001.xml", twoPageExport)

	result, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: out}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.RecordsProcessed)
	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, "front-bytes", readFile(t, filepath.Join(out, "maps", "000005", "000005_000001.jpg")))
	assert.Equal(t, "back-bytes", readFile(t, filepath.Join(out, "maps", "000005", "000005_000002.jpg")))
}

func TestImporter_SecondRunMakesNoRequests(t *testing.T) {
	fs, client := newFileServer(t)
	fs.files["101/000005_000001.jpg"] = "front-bytes"
	fs.files["102/000005_000002.jpg"] = "back-bytes"

	in := t.TempDir()
	out := t.TempDir()
	writeExport(t, in, "maps_structure_001.xml", twoPageExport)
	opts := Options{Alias: "maps", InputDir: in, DownloadDir: out}

	_, err := New(client, opts, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fs.requestCount())

	result, err := New(client, opts, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fs.requestCount())
	assert.Equal(t, 2, result.AlreadyPresent)
	assert.Equal(t, 0, result.Downloaded)
}

func TestImporter_PDFAndSimpleItems(t *testing.T) {
	fs, client := newFileServer(t)
	fs.files["42/000042_000001.pdf"] = "%PDF-1.4"
	fs.files["6/000006_000001.jp2"] = "jp2-bytes"

	in := t.TempDir()
	out := t.TempDir()
	writeExport(t, in, "maps_structure_001.xml", `<collection>
		<record><cdmid>42</cdmid><dmrecord>42</dmrecord><structure><type>Document-PDF</type>
			<page><pagefile>1.pdfpage</pagefile><pageptr>40</pageptr></page>
			<node><nodetitle>Part</nodetitle><page><pagefile>2.pdfpage</pagefile><pageptr>41</pageptr></page></node>
		</structure></record>
		<record><cdmid>6</cdmid><find>6.jp2</find><dmrecord>6</dmrecord></record>
	</collection>`)

	result, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: out}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 2, fs.requestCount())
	assert.Equal(t, "%PDF-1.4", readFile(t, filepath.Join(out, "maps", "000042", "000042_000001.pdf")))
	assert.Equal(t, "jp2-bytes", readFile(t, filepath.Join(out, "maps", "000006", "000006_000001.jp2")))
}

func TestImporter_NotFoundAndFailuresContinue(t *testing.T) {
	fs, client := newFileServer(t)
	fs.statuses["101/000005_000001.jpg"] = http.StatusInternalServerError
	// 102 is unknown to the server and answers with the not found body.
	fs.files["7/000007_000001.tif"] = "tif-bytes"

	in := t.TempDir()
	out := t.TempDir()
	writeExport(t, in, "maps_structure_001.xml", twoPageExport)
	writeExport(t, in, "maps_structure_002.xml", `<collection>
		<record><dmrecord>7</dmrecord><find>7.tif</find></record>
	</collection>`)

	result, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: out}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.NotFound)
	assert.Equal(t, 1, result.Downloaded)

	recordDir := filepath.Join(out, "maps", "000005")
	entries, err := os.ReadDir(recordDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed downloads leave nothing behind")
	assert.Equal(t, "tif-bytes", readFile(t, filepath.Join(out, "maps", "000007", "000007_000001.tif")))
}

func TestImporter_SkipsBrokenFilesAndRecords(t *testing.T) {
	fs, client := newFileServer(t)
	fs.files["6/000006_000001.jpg"] = "x"

	in := t.TempDir()
	out := t.TempDir()
	writeExport(t, in, "a.xml", `<collection><record><title>no id</title></record>
		<record><dmrecord>6</dmrecord><find>6.jpg</find></record></collection>`)
	writeExport(t, in, "b.xml", `<collection><record>`)
	writeExport(t, in, "notes.txt", `ignored`)

	result, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: out}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 1, result.RecordsFailed)
	assert.Equal(t, 1, result.RecordsProcessed)
	assert.Equal(t, 1, result.Downloaded)
}

func TestImporter_FilesInLexicalOrder(t *testing.T) {
	fs, client := newFileServer(t)
	fs.files["2/000002_000001.jpg"] = "b"
	fs.files["1/000001_000001.jpg"] = "a"

	in := t.TempDir()
	writeExport(t, in, "maps_structure_002.xml", `<collection><record><dmrecord>2</dmrecord><find>2.jpg</find></record></collection>`)
	writeExport(t, in, "maps_structure_001.xml", `<collection><record><dmrecord>1</dmrecord><find>1.jpg</find></record></collection>`)

	_, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: t.TempDir()}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1/000001_000001.jpg", "2/000002_000001.jpg"}, fs.requests)
}

func TestImporter_DryRun(t *testing.T) {
	fs, client := newFileServer(t)

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "download")
	writeExport(t, in, "maps_structure_001.xml", twoPageExport)

	result, err := New(client, Options{Alias: "maps", InputDir: in, DownloadDir: out, DryRun: true}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsProcessed)
	assert.Equal(t, 0, fs.requestCount())
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "dry run creates no directories")
}

func TestImporter_MissingInputDir(t *testing.T) {
	_, client := newFileServer(t)

	_, err := New(client, Options{Alias: "maps", InputDir: filepath.Join(t.TempDir(), "nope"), DownloadDir: t.TempDir()}, nil).Run(context.Background())
	assert.Error(t, err)
}

// stubSource returns a fixed error or body without a server.
type stubSource struct {
	err   error
	body  string
	calls int
}

func (s *stubSource) GetFile(ctx context.Context, alias, key, filename string) (io.ReadCloser, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s *stubSource) FileURL(alias, key, filename string) string {
	return "https://example.org/" + alias + "/id/" + key + "/filename/" + filename
}

func TestDownloader_Download(t *testing.T) {
	tests := []struct {
		name    string
		source  *stubSource
		want    Result
		wantErr error
	}{
		{name: "success", source: &stubSource{body: "data"}, want: Downloaded},
		{name: "not found", source: &stubSource{err: contentdm.ErrItemNotFound}, want: NotFound, wantErr: contentdm.ErrItemNotFound},
		{name: "timeout", source: &stubSource{err: contentdm.ErrTimeout}, want: Failed, wantErr: contentdm.ErrTimeout},
		{name: "status", source: &stubSource{err: &contentdm.StatusError{StatusCode: 503}}, want: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			res, err := NewDownloader(tt.source, "maps").Download(context.Background(), "101", dir, "000005_000001.jpg")

			assert.Equal(t, tt.want, res)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.want == Downloaded {
				require.NoError(t, err)
				assert.Equal(t, "data", readFile(t, filepath.Join(dir, "000005_000001.jpg")))
			} else {
				require.Error(t, err)
				_, statErr := os.Stat(filepath.Join(dir, "000005_000001.jpg"))
				assert.True(t, os.IsNotExist(statErr))
			}
		})
	}
}

func TestDownloader_ExistingFileIsNotRequested(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "000005_000001.jpg")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	src := &stubSource{body: "new"}
	res, err := NewDownloader(src, "maps").Download(context.Background(), "101", dir, "000005_000001.jpg")
	require.NoError(t, err)

	assert.Equal(t, AlreadyPresent, res)
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, "old", readFile(t, target))
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "downloaded", Downloaded.String())
	assert.Equal(t, "local", AlreadyPresent.String())
	assert.Equal(t, "not found", NotFound.String())
	assert.Equal(t, "failed", Failed.String())
}
