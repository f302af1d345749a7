package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/NordCoder/wanikani-bot/internal/services/notifier"
	"github.com/stretchr/testify/require"
)

func fakeWaniKani(t *testing.T, status int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":"Unauthorized. Nice try.","code":401}`)
			return
		}
		switch r.URL.Path {
		case "/v2/user":
			fmt.Fprint(w, `{"object":"user","data":{"username":"koichi","level":7}}`)
		case "/v2/summary":
			fmt.Fprint(w, `{"object":"report","data":{
				"lessons":[{"available_at":"2020-01-01T00:00:00Z","subject_ids":[1]}],
				"next_reviews_at":"2020-01-01T00:00:00Z",
				"reviews":[{"available_at":"2020-01-01T00:00:00Z","subject_ids":[10,11,12]}]}}`)
		case "/v2/review_statistics":
			fmt.Fprint(w, `{"object":"collection","pages":{"next_url":null},"data":[
				{"id":1,"object":"review_statistic","data":{"subject_id":440,"subject_type":"kanji",
				"meaning_correct":1,"meaning_incorrect":3,"reading_correct":2,"reading_incorrect":2,"hidden":false}}]}`)
		case "/v2/subjects":
			fmt.Fprint(w, `{"object":"collection","pages":{"next_url":null},"data":[
				{"id":440,"object":"kanji","data":{"characters":"一","slug":"一","level":1,
				"meanings":[{"meaning":"One","primary":true}],"readings":[{"reading":"いち","primary":true}]}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type webhookSink struct {
	mu       sync.Mutex
	payloads []notifier.WebhookPayload
}

func fakeWebhook(t *testing.T, status int, sink *webhookSink) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p notifier.WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			sink.mu.Lock()
			sink.payloads = append(sink.payloads, p)
			sink.mu.Unlock()
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// extra is appended to the yaml verbatim.
func writeConfig(t *testing.T, wkURL, apiKey, hookURL string, extra ...string) string {
	t.Helper()
	t.Setenv("WANIKANI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "wanikani-bot.yaml")
	body := fmt.Sprintf(`
wanikani:
  base_url: %q
  api_key: %q
keyring:
  enable: false
notify:
  channel: webhook
  webhook:
    url: %q
log:
  level: error
`, wkURL+"/v2", apiKey, hookURL) + strings.Join(extra, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_Success(t *testing.T) {
	var hits atomic.Int32
	wk := fakeWaniKani(t, http.StatusOK, &hits)
	sink := &webhookSink{}
	hook := fakeWebhook(t, http.StatusNoContent, sink)

	code := run(context.Background(), writeConfig(t, wk.URL, "tok", hook.URL))
	require.Equal(t, 0, code)

	require.Len(t, sink.payloads, 2)
	require.Contains(t, sink.payloads[0].Text, "Reviews: 3")
	require.Contains(t, sink.payloads[0].Text, "一 - One")
	require.Equal(t, "prompt", sink.payloads[1].Kind)
	require.Contains(t, sink.payloads[1].Body, "【KANJI】 一")
}

func TestRun_PushesRunAndRetryMetrics(t *testing.T) {
	var hits atomic.Int32
	wk := fakeWaniKani(t, http.StatusOK, &hits)
	hook := fakeWebhook(t, http.StatusNoContent, &webhookSink{})

	var mu sync.Mutex
	var pushed []byte
	var pushPath string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		pushed, pushPath = b, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gw.Close)

	path := writeConfig(t, wk.URL, "tok", hook.URL, fmt.Sprintf("metrics:\n  pushgateway_url: %q\n  job: wkbot-test\n", gw.URL))
	require.Equal(t, 0, run(context.Background(), path))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/metrics/job/wkbot-test", pushPath)
	require.Contains(t, string(pushed), "wkbot_runs_total")
	require.Contains(t, string(pushed), "wkbot_retry_attempts_total")
	require.Contains(t, string(pushed), "wkbot_retry_duration_seconds")
}

func TestRun_UnauthorizedSendsNothing(t *testing.T) {
	var hits atomic.Int32
	wk := fakeWaniKani(t, http.StatusUnauthorized, &hits)
	sink := &webhookSink{}
	hook := fakeWebhook(t, http.StatusNoContent, sink)

	code := run(context.Background(), writeConfig(t, wk.URL, "bad", hook.URL))
	require.Equal(t, 3, code)
	require.Equal(t, int32(1), hits.Load())
	require.Empty(t, sink.payloads)
}

func TestRun_NotificationFailure(t *testing.T) {
	var hits atomic.Int32
	wk := fakeWaniKani(t, http.StatusOK, &hits)
	hook := fakeWebhook(t, http.StatusInternalServerError, &webhookSink{})

	code := run(context.Background(), writeConfig(t, wk.URL, "tok", hook.URL))
	require.Equal(t, 6, code)
}

func TestRun_MissingTokenIsConfigurationError(t *testing.T) {
	var hits atomic.Int32
	wk := fakeWaniKani(t, http.StatusOK, &hits)
	hook := fakeWebhook(t, http.StatusNoContent, &webhookSink{})

	code := run(context.Background(), writeConfig(t, wk.URL, "", hook.URL))
	require.Equal(t, 2, code)
	require.Zero(t, hits.Load())
}

func TestRun_InvalidConfig(t *testing.T) {
	code := run(context.Background(), writeConfig(t, "http://127.0.0.1:1", "tok", ""))
	require.Equal(t, 2, code)
}
