package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"igfeed/pkg/models"
	"igfeed/pkg/storage"
	"igfeed/pkg/ui"
)

const testImageSize = 600

// brandColors fill slots 1..6 in order
var brandColors = []string{
	"#2D4A32", // pine green
	"#8B5A2B", // cedar brown
	"#D4A574", // oak tan
	"#A0522D", // warm brown
	"#5A7C5E", // light pine
	"#F5E6D3", // cream
}

var testImagesCmd = &cobra.Command{
	Use:   "test-images",
	Short: "Fill the gallery slots with solid brand-colour images",
	Long: `Write six 600x600 JPEGs in the brand colours into the gallery slots so the
site layout can be checked without touching Instagram. Existing slot images
are overwritten without a backup.`,
	Args: cobra.NoArgs,
	RunE: runTestImages,
}

func init() {
	rootCmd.AddCommand(testImagesCmd)
}

func runTestImages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return errRunFailed
	}

	store, err := storage.NewSlotStore(cfg.ImagesPath())
	if err != nil {
		return err
	}

	var total int64
	for slot := 1; slot <= models.MaxSlots; slot++ {
		c, err := parseHexColor(brandColors[slot-1])
		if err != nil {
			return err
		}
		n, err := store.WriteSlotFunc(slot, func(w io.Writer) (int64, error) {
			return encodeSolidJPEG(w, c, testImageSize)
		})
		if err != nil {
			ui.PrintError(fmt.Sprintf("Slot %d", slot), err)
			return errRunFailed
		}
		total += n
		ui.PrintInfo("Created", store.SlotPath(slot))
	}

	ui.PrintSuccess(fmt.Sprintf("Test images written (%s)", humanize.Bytes(uint64(total))))
	return nil
}

// parseHexColor parses #RRGGBB
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func encodeSolidJPEG(w io.Writer, c color.Color, size int) (int64, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)

	cw := &countingWriter{w: w}
	if err := jpeg.Encode(cw, img, &jpeg.Options{Quality: 95}); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
