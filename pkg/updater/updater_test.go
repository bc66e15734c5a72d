package updater

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
	"testing"
	"time"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/instagram"
	"igfeed/pkg/logger"
	"igfeed/pkg/metadata"
	"igfeed/pkg/models"
	"igfeed/pkg/publish"
	"igfeed/pkg/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Site.Root = t.TempDir()
	cfg.Instagram.UserID = "1789"
	cfg.Sources.ManualDir = filepath.Join(cfg.Site.Root, "downloads")
	return cfg
}

// graphServer serves a media listing of eight items (two videos) whose
// images are hosted by the same server. Paths listed in broken return 404.
func graphServer(t *testing.T, broken ...string) *httptest.Server {
	t.Helper()
	skip := make(map[string]bool)
	for _, b := range broken {
		skip[b] = true
	}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/1789/media":
			if r.URL.Query().Get("access_token") != "good-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var items []instagram.MediaItem
			for i := 1; i <= 8; i++ {
				mt := instagram.MediaTypeImage
				if i == 3 || i == 6 {
					mt = instagram.MediaTypeVideo
				}
				items = append(items, instagram.MediaItem{
					ID:        fmt.Sprintf("m%d", i),
					MediaType: mt,
					MediaURL:  fmt.Sprintf("%s/img/m%d.jpg", server.URL, i),
					Permalink: fmt.Sprintf("https://www.instagram.com/p/m%d/", i),
					Caption:   fmt.Sprintf("post %d", i),
					Timestamp: "2024-09-30T10:00:00+0000",
				})
			}
			json.NewEncoder(w).Encode(instagram.MediaResponse{Data: items})
		case strings.HasPrefix(r.URL.Path, "/img/"):
			if skip[r.URL.Path] {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, "jpeg:%s", r.URL.Path)
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func clientsFor(server *httptest.Server) source.Clients {
	graph := instagram.NewGraphClient(5*time.Second, logger.NewNopLogger())
	graph.SetBaseURL(server.URL)
	web := instagram.NewWebClient(5*time.Second, "", logger.NewNopLogger())
	web.SetBaseURL(server.URL)
	return source.Clients{Graph: graph, Profiles: web, Downloader: web}
}

type memDownloader struct{ urls []string }

func (m *memDownloader) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	m.urls = append(m.urls, url)
	n, err := io.WriteString(w, "placeholder-bytes")
	return int64(n), err
}

type failingDownloader struct{}

func (failingDownloader) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	return 0, &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
}

func TestRunAllSlotsFailedIsStillOK(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Order = []string{config.SourcePlaceholder}

	u, err := New(cfg, Options{Downloader: failingDownloader{}, Now: clock}, logger.NewNopLogger())
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 0, result.Report.Succeeded())
	assert.Len(t, result.Report.Failed(), models.MaxSlots)

	record, err := metadata.Load(cfg.MetadataPath())
	require.NoError(t, err)
	assert.Len(t, record.Posts, models.MaxSlots)
}

func TestRunAPIWithFailedSlotStillRecorded(t *testing.T) {
	server := graphServer(t, "/img/m4.jpg")
	cfg := testConfig(t)

	require.NoError(t, os.MkdirAll(cfg.ImagesPath(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "instagram-3.jpg"), []byte("previous"), 0644))

	log := logger.NewTestLogger()
	var outcomes []publish.SlotOutcome
	u, err := New(cfg, Options{
		Token:   "good-token",
		Clients: clientsFor(server),
		Now:     clock,
		OnSlot:  func(o publish.SlotOutcome) { outcomes = append(outcomes, o) },
	}, log)
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, config.SourceAPI, result.Source)
	assert.Len(t, result.Attempts, 1)
	assert.NotEmpty(t, result.RunID)

	// m1 m2 m4 m5 m7 m8 land in slots 1..6; m4 (slot 3) fails
	assert.Equal(t, 5, result.Report.Succeeded())
	require.Len(t, result.Report.Failed(), 1)
	assert.Equal(t, 3, result.Report.Failed()[0].Slot)
	assert.Len(t, outcomes, 6)

	data, err := os.ReadFile(filepath.Join(cfg.ImagesPath(), "instagram-3.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	data, err = os.ReadFile(filepath.Join(cfg.ImagesPath(), "instagram-6.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/img/m8.jpg", string(data))

	record, err := metadata.Load(cfg.MetadataPath())
	require.NoError(t, err)
	assert.True(t, record.LastUpdated.Equal(fixedNow))
	require.Len(t, record.Posts, 6)
	assert.Equal(t, "m4", record.Posts[2].ID, "failed post still recorded")

	backups, err := os.ReadDir(filepath.Join(cfg.ImagesPath(), "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	finished := false
	for _, msg := range log.GetMessages() {
		if msg.Message == "Gallery update finished" {
			finished = true
			assert.Equal(t, result.RunID, msg.Fields["run_id"])
			assert.Equal(t, 5, msg.Fields["updated"])
		}
	}
	assert.True(t, finished)
}

func TestRunFallsBackToPlaceholder(t *testing.T) {
	server := graphServer(t)
	cfg := testConfig(t)
	cfg.Settings.BackupOldImages = false

	downloads := &memDownloader{}
	u, err := New(cfg, Options{
		Token:      "expired-token",
		Clients:    clientsFor(server),
		Downloader: downloads,
		Now:        clock,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, config.SourcePlaceholder, result.Source)

	require.Len(t, result.Attempts, 3)
	assert.True(t, errs.IsType(result.Attempts[0].Err, errs.ErrorTypeAuth))
	assert.True(t, errs.IsType(result.Attempts[1].Err, errs.ErrorTypeServerError))
	assert.NoError(t, result.Attempts[2].Err)

	require.Len(t, downloads.urls, 6)
	assert.Equal(t, "https://via.placeholder.com/600x600/2D4A32/FFFFFF?text=Instagram+Post+1", downloads.urls[0])

	record, err := metadata.Load(cfg.MetadataPath())
	require.NoError(t, err)
	for i, p := range record.Posts {
		assert.Equal(t, fmt.Sprintf("placeholder_%d", i+1), p.ID)
	}
	assert.NoDirExists(t, filepath.Join(cfg.ImagesPath(), "backups"))
	assert.NoDirExists(t, cfg.TempPath())
}

func TestRunManualInsufficientWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Preferred = config.SourceManual
	require.NoError(t, os.MkdirAll(cfg.Sources.ManualDir, 0755))
	for i := 1; i <= 4; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Sources.ManualDir, fmt.Sprintf("%d.jpg", i)), []byte("x"), 0644))
	}

	downloads := &memDownloader{}
	u, err := New(cfg, Options{Downloader: downloads, Now: clock}, logger.NewNopLogger())
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrInsufficientCandidates)
	assert.False(t, result.OK())
	assert.Empty(t, downloads.urls)
	assert.Len(t, result.Attempts, 2)

	for slot := 1; slot <= models.MaxSlots; slot++ {
		assert.NoFileExists(t, filepath.Join(cfg.ImagesPath(), models.SlotFileName(slot)))
	}
	assert.NoFileExists(t, cfg.MetadataPath())
}

func TestRunManualSourceSucceeds(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Order = []string{config.SourceManual}
	require.NoError(t, os.MkdirAll(cfg.Sources.ManualDir, 0755))
	for i := 1; i <= 7; i++ {
		path := filepath.Join(cfg.Sources.ManualDir, fmt.Sprintf("%d.jpg", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("manual-%d", i)), 0644))
		mtime := fixedNow.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	u, err := New(cfg, Options{Now: clock}, logger.NewNopLogger())
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result.Report.Succeeded())

	data, err := os.ReadFile(filepath.Join(cfg.ImagesPath(), "instagram-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "manual-7", string(data))
}

func TestRunNoPosts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Order = []string{config.SourceAPI}

	log := logger.NewTestLogger()
	u, err := New(cfg, Options{Now: clock}, log)
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrNoPosts)
	assert.False(t, result.OK())
	assert.True(t, log.HasMessage("No posts retrieved, aborting"))
	assert.NoFileExists(t, cfg.MetadataPath())
	assert.NoDirExists(t, cfg.ImagesPath())
}

func TestRunMetadataFailurePropagates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Order = []string{config.SourcePlaceholder}
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Site.Root, "data"), []byte("not a dir"), 0644))

	u, err := New(cfg, Options{Downloader: &memDownloader{}, Now: clock}, logger.NewNopLogger())
	require.NoError(t, err)

	result, err := u.Run(context.Background())
	assert.Error(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, 6, result.Report.Succeeded())
}

func TestNewRejectsUnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Order = []string{"rss"}
	_, err := New(cfg, Options{}, logger.NewNopLogger())
	assert.Error(t, err)
}
