package contentdm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<xml><title>Map of Paris</title><subjec>Maps</subjec><descri></descri><dmrecord>5</dmrecord></xml>`

const compoundXML = `<?xml version="1.0" encoding="UTF-8"?>
<cpd><type>Document</type>
<page><pagetitle>Front</pagetitle><pagefile>101.jp2</pagefile><pageptr>101</pageptr></page>
<page><pagetitle>Back</pagetitle><pagefile>102.jp2</pagefile><pageptr>102</pageptr></page>
</cpd>`

const notCompoundXML = `<?xml version="1.0" encoding="UTF-8"?>
<error><code>-2</code><message>Requested item is not compound</message></error>`

// newTestClient starts a fake CONTENTdm server answering paths below /api/
// and /files/ with the given handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := Options{APIURL: server.URL + "/api/", FileURL: server.URL + "/files/"}
	return NewClientDoer(opts, server.Client(), server.Client()), server
}

func TestClient_Query(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"pager":{"start":"11","maxrecs":"10","total":1234},
			"records":[{"collection":"/maps","pointer":5,"filetype":"cpd"},
			           {"collection":"/maps","pointer":"6","filetype":"jp2"}]}`))
	})

	result, err := client.Query(context.Background(), "maps", 11, 10)
	require.NoError(t, err)

	assert.Equal(t, "/api/dmQuery/maps/0/dmcreated/dmcreated!dmrecord/10/11/0/0/0/json", gotPath)
	assert.Equal(t, 1234, result.TotalRecords())
	require.Len(t, result.Records, 2)
	assert.Equal(t, "maps", result.Records[0].Alias())
	assert.Equal(t, 5, result.Records[0].ID())
	assert.Equal(t, 6, result.Records[1].ID())
}

func TestClient_CountRecords(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    int
		wantErr error
	}{
		{name: "total", status: http.StatusOK, body: `{"pager":{"total":"42"},"records":[]}`, want: 42},
		{name: "zero", status: http.StatusOK, body: `{"pager":{"total":0},"records":[]}`, wantErr: ErrNoRecords},
		{name: "null body", status: http.StatusOK, body: `null`, wantErr: ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			total, err := client.CountRecords(context.Background(), "maps", 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestClient_CountRecords_TransportFailureIsNotNoRecords(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CountRecords(context.Background(), "maps", 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoRecords))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestClient_Query_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"-2","message":"Requested item not found","restrictionCode":"-1"}`))
	})

	_, err := client.Query(context.Background(), "nope", 1, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "-2", apiErr.Code)
}

func TestClient_ItemInfoXML(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dmGetItemInfo/maps/5/xml", r.URL.Path)
		w.Write([]byte(itemInfoXML))
	})

	root, err := client.ItemInfoXML(context.Background(), "maps", 5)
	require.NoError(t, err)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"title", "subjec", "descri", "dmrecord"}, names)
	assert.Equal(t, "Map of Paris", root.ChildText("title"))
}

func TestClient_ItemInfoJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dmGetItemInfo/maps/101/json", r.URL.Path)
		w.Write([]byte(`{"title":"Front","descri":{},"subjec":"Maps"}`))
	})

	fields, err := client.ItemInfoJSON(context.Background(), "maps", 101)
	require.NoError(t, err)
	assert.Equal(t, "Front", fields["title"])
	assert.Equal(t, map[string]any{}, fields["descri"])
}

func TestClient_CompoundObjectInfo(t *testing.T) {
	t.Run("compound object", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/dmGetCompoundObjectInfo/maps/5/xml", r.URL.Path)
			w.Write([]byte(compoundXML))
		})

		structure, err := client.CompoundObjectInfo(context.Background(), "maps", 5)
		require.NoError(t, err)
		require.NotNil(t, structure)
		assert.Equal(t, "Document", structure.Type)
		assert.Equal(t, "structure", structure.Element().Name())
		assert.Len(t, structure.Pages(), 2)
	})

	t.Run("simple item", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(notCompoundXML))
		})

		structure, err := client.CompoundObjectInfo(context.Background(), "maps", 6)
		require.NoError(t, err)
		assert.Nil(t, structure)
	})
}

func TestClient_GetFile(t *testing.T) {
	payload := strings.Repeat("x", 5000)

	tests := []struct {
		name       string
		status     int
		body       string
		wantBody   string
		wantErr    error
		wantStatus int
	}{
		{name: "success", status: http.StatusOK, body: payload, wantBody: payload},
		{name: "small file", status: http.StatusOK, body: "tiny", wantBody: "tiny"},
		{name: "sentinel with 200", status: http.StatusOK, body: NotFoundBody, wantErr: ErrItemNotFound},
		{name: "sentinel with 404", status: http.StatusNotFound, body: NotFoundBody, wantErr: ErrItemNotFound},
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway", wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/files/maps/id/101/filename/000005_000001.jpg", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			body, err := client.GetFile(context.Background(), "maps", "101", "000005_000001.jpg")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantStatus != 0:
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			default:
				require.NoError(t, err)
				defer body.Close()
				got, err := io.ReadAll(body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(got))
			}
		})
	}
}

func TestClient_GetFile_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	doer := &http.Client{Timeout: 50 * time.Millisecond}
	client := NewClientDoer(Options{FileURL: server.URL + "/files/"}, doer, doer)

	_, err := client.GetFile(context.Background(), "maps", "101", "a.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsTimeout(err))
}

func TestNewClient_UsesPester(t *testing.T) {
	client := NewClient(Options{APIURL: "https://example.org/?q=", Attempts: 0})
	require.NotNil(t, client.api)
	require.NotNil(t, client.files)
	assert.Equal(t, "https://example.org/?q=dmGetItemInfo/maps/5/xml", client.endpoint("dmGetItemInfo", "maps", "5", "xml"))
}

func TestCleanAlias(t *testing.T) {
	assert.Equal(t, "maps", CleanAlias("/maps"))
	assert.Equal(t, "maps", CleanAlias("maps"))
}
