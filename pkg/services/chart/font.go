package chart

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

type faces struct {
	title font.Face
	label font.Face
}

// loadFaces prefers a scalable font found in fontsDir and falls back to
// the built-in bitmap font. The fallback never fails; it only degrades
// text fidelity.
func loadFaces(logger zerolog.Logger, fontsDir string) *faces {
	fallback := &faces{title: basicfont.Face7x13, label: basicfont.Face7x13}
	if fontsDir == "" {
		return fallback
	}

	path := findFontFile(fontsDir)
	if path == "" {
		logger.Debug().Str("dir", fontsDir).Msg("no scalable font found, using bitmap font")
		return fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read font, using bitmap font")
		return fallback
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to parse font, using bitmap font")
		return fallback
	}

	title, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: 14, DPI: 96, Hinting: font.HintingFull})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build title face, using bitmap font")
		return fallback
	}
	label, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: 10, DPI: 96, Hinting: font.HintingFull})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build label face, using bitmap font")
		return fallback
	}

	logger.Debug().Str("path", path).Msg("loaded scalable chart font")
	return &faces{title: title, label: label}
}

func findFontFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".ttf" || ext == ".otf" {
			return filepath.Join(dir, entry.Name())
		}
	}
	return ""
}
