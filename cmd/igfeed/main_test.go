package main

import (
	"bytes"
	"errors"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/models"
	"igfeed/pkg/publish"
	"igfeed/pkg/source"
	"igfeed/pkg/ui"
	"igfeed/pkg/updater"
)

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#2D4A32")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x2d, G: 0x4a, B: 0x32, A: 0xff}, c)

	_, err = parseHexColor("#12345")
	assert.Error(t, err)
	_, err = parseHexColor("zzzzzz")
	assert.Error(t, err)

	for _, hex := range brandColors {
		_, err := parseHexColor(hex)
		assert.NoError(t, err, hex)
	}
}

func TestEncodeSolidJPEG(t *testing.T) {
	var buf bytes.Buffer
	n, err := encodeSolidJPEG(&buf, color.RGBA{R: 0xf5, G: 0xe6, B: 0xd3, A: 0xff}, 32)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestConfigTemplateLoads(t *testing.T) {
	text := configTemplateText()
	assert.True(t, strings.Contains(text, config.PlaceholderAccessToken))

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(text), &cfg))
	assert.Equal(t, []string{"api", "scrape", "placeholder"}, cfg.Sources.Order)
	assert.False(t, cfg.HasAPICredentials())
	assert.Equal(t, "data/instagram-posts.json", cfg.Site.MetadataFile)

	path := filepath.Join(t.TempDir(), "igfeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	loaded := config.DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	require.NoError(t, loaded.Validate())
}

func TestReadPasswordPiped(t *testing.T) {
	token, err := readPassword(strings.NewReader("  IGQVJtoken123  \n"), false)
	require.NoError(t, err)
	assert.Equal(t, "IGQVJtoken123", token)

	token, err = readPassword(strings.NewReader("no-newline"), false)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", token)

	_, err = readPassword(strings.NewReader(""), false)
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	ui.SetOutput(&buf)
	t.Cleanup(func() { ui.SetOutput(os.Stdout) })

	result := &updater.Result{
		Source: "placeholder",
		Attempts: []source.Attempt{
			{Source: "api", Err: errs.ErrNotConfigured},
			{Source: "placeholder", Posts: 6},
		},
		Report: &publish.Report{
			BackupDir: "/site/images/backups/2024-10-01_12-00-00",
			Outcomes: []publish.SlotOutcome{
				{Slot: 1, PostID: "placeholder_1", Origin: models.OriginRemote, Bytes: 2048},
				{Slot: 2, PostID: "placeholder_2", Origin: models.OriginRemote, Err: errors.New("connection reset")},
			},
		},
		RecordPath: "/site/data/instagram-posts.json",
	}
	printSummary(result)

	out := buf.String()
	assert.Contains(t, out, "6 posts")
	assert.Contains(t, out, errs.ErrNotConfigured.Error())
	assert.Contains(t, out, "Slot 2 (placeholder_2) not updated")
	assert.Contains(t, out, "1/2 slots, 2.0 kB")
	assert.Contains(t, out, "backups/2024-10-01_12-00-00")
	assert.Contains(t, out, "instagram-posts.json")
}

func TestPrintSummaryQuiet(t *testing.T) {
	var buf bytes.Buffer
	ui.SetOutput(&buf)
	ui.SetQuiet(true)
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout)
		ui.SetQuiet(false)
	})

	printSummary(&updater.Result{Attempts: []source.Attempt{{Source: "api", Posts: 6}}})
	printSummary(nil)
	assert.Empty(t, buf.String())
}
