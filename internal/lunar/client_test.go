package lunar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<div class="moon">
  <p>Phase de la lune : Gibbeuse Croissante</p>
  <p>Illumination : 78 %</p>
  <p>Distance à la terre : 384 400 km</p>
  <p>Prochaine pleine lune : 12 jours</p>
</div>
</body></html>`

func TestClientFetchParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	info, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Gibbeuse Croissante", info.Phase)
	assert.Equal(t, 78, info.Illumination)
	assert.Equal(t, "384400", info.Distance)
	require.NotNil(t, info.NextFullMoon)
	assert.Equal(t, 12, *info.NextFullMoon)
	assert.Equal(t, moonImageURL, info.ImageURL)
	assert.False(t, info.Fallback)
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}

func TestClientFetchUnparseablePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}
