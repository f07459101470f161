package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // animated shots decode to their first frame
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

var shotThumbCmd = &cobra.Command{
	Use:   "thumb <id>",
	Short: "Download a shot image and write a thumbnail",
	Long: `Fetch a shot, download its teaser image and write a scaled thumbnail.

The shot lookup counts against the API quota; the image download goes to the
image host and does not.`,
	Args: cobra.ExactArgs(1),
	RunE: runShotThumb,
}

func init() {
	shotCmd.AddCommand(shotThumbCmd)
	addThumbFlags(shotThumbCmd)
}

func addThumbFlags(cmd *cobra.Command) {
	cmd.Flags().String("out-dir", ".", "Output directory for thumbnails")
	cmd.Flags().Int("max-size", 256, "Max thumbnail dimension (64-1024)")
	cmd.Flags().String("format", "jpeg", "Thumbnail format: jpeg or png")
	cmd.Flags().Int("jpeg-quality", 80, "JPEG quality (1-100)")
	cmd.Flags().String("suffix", "thumbnail", "Filename suffix (e.g. 'thumbnail' -> 42-title.thumbnail.jpg)")
	cmd.Flags().Bool("full", false, "Scale the full-size image instead of the teaser")
}

type thumbOptions struct {
	outDir      string
	maxSize     int
	format      string
	jpegQuality int
	suffix      string
	full        bool
}

func thumbOptionsFromFlags(cmd *cobra.Command) (thumbOptions, error) {
	outDir, _ := cmd.Flags().GetString("out-dir")
	maxSize, _ := cmd.Flags().GetInt("max-size")
	format, _ := cmd.Flags().GetString("format")
	jpegQuality, _ := cmd.Flags().GetInt("jpeg-quality")
	suffix, _ := cmd.Flags().GetString("suffix")
	full, _ := cmd.Flags().GetBool("full")

	opts := thumbOptions{
		outDir:      strings.TrimSpace(outDir),
		maxSize:     maxSize,
		format:      strings.ToLower(strings.TrimSpace(format)),
		jpegQuality: jpegQuality,
		suffix:      strings.TrimSpace(suffix),
		full:        full,
	}
	if opts.outDir == "" {
		opts.outDir = "."
	}
	if opts.suffix == "" {
		opts.suffix = "thumbnail"
	}
	if opts.maxSize < 64 || opts.maxSize > 1024 {
		return opts, errors.New("--max-size must be between 64 and 1024")
	}
	switch opts.format {
	case "jpeg", "jpg", "png":
	default:
		return opts, fmt.Errorf("unsupported format: %s", opts.format)
	}
	return opts, nil
}

func runShotThumb(cmd *cobra.Command, args []string) error {
	id, err := parseShotID(args[0])
	if err != nil {
		return err
	}
	opts, err := thumbOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cfg, cliLogger())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	path, err := writeShotThumbnail(commandContext(cmd), s, id, opts)
	if err != nil {
		return err
	}
	if path == "" {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), noDataMessage)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

// writeShotThumbnail returns the written path, or "" when the shot lookup
// produced no data.
func writeShotThumbnail(ctx context.Context, s *session, id int64, opts thumbOptions) (string, error) {
	shot, err := s.client.Shot(ctx, id)
	if err != nil || shot == nil {
		return "", err
	}

	source := shot.ImageTeaserURL
	if opts.full || source == "" {
		source = shot.ImageURL
	}
	if source == "" {
		return "", fmt.Errorf("shot %d has no image", shot.ID)
	}

	status, body, err := s.transport.Get(ctx, source)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", source, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", source, status)
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", source, err)
	}

	absOut, err := ensureOutDir(opts.outDir)
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%d-%s", shot.ID, sanitizeFilename(shot.Title))
	outPath := thumbnailPath(absOut, base, opts.suffix, opts.format)

	if err := writeImageFile(outPath, scaleToFit(src, opts.maxSize), opts.format, opts.jpegQuality); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeImageFile encodes img to path. A failed encode removes the partial file.
func writeImageFile(path string, img image.Image, format string, jpegQuality int) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := encodeImage(outFile, img, format, jpegQuality); err != nil {
		_ = outFile.Close()
		_ = os.Remove(path)
		return err
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func thumbnailPath(outDir, base, suffix, format string) string {
	ext := "jpg"
	if format == "png" {
		ext = "png"
	}
	return filepath.Join(outDir, fmt.Sprintf("%s.%s.%s", base, suffix, ext))
}

// scaleToFit shrinks src so its longer side is at most maxSize. Smaller
// images keep their size.
func scaleToFit(src image.Image, maxSize int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	scale := float64(maxSize) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}
	newW := max(int(float64(width)*scale), 1)
	newH := max(int(float64(height)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func encodeImage(w io.Writer, img image.Image, format string, jpegQuality int) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg", "":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: min(max(jpegQuality, 1), 100)})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
