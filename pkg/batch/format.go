package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
)

// Format identifies the encoding of an inventory export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks the format from the file extension (case-insensitive).
func FormatFromFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
