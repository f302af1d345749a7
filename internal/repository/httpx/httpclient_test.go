package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_SetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := NewHTTPClient(config.HTTP{Timeout: 2 * time.Second, UserAgent: "wanikani-bot/test", VerifyTLS: true}, "test")
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, "wanikani-bot/test", got)
	require.Equal(t, 2*time.Second, c.Timeout)
}
