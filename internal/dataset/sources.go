package dataset

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/valegio/MapaRelaveCL/internal/projection"
)

// Name identifies one of the reference datasets.
type Name string

const (
	// Deposits is the national tailings deposit registry (point features).
	Deposits Name = "relaves"
	// Regions holds the administrative region polygons.
	Regions Name = "regiones"
)

const driveDownloadURL = "https://drive.google.com/uc"

const (
	depositsDriveID = "11V8HQvoDBZpkORoj9lhXB7vzr16XLYTn"
	regionsDriveID  = "1Cp_3R_VjV--bYgzwRF_dl8MwOtmincod"
)

var (
	ErrUnknownDataset      = errors.New("unknown dataset")
	ErrUnsupportedFormat   = errors.New("unsupported dataset format")
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// File describes where a dataset is downloaded from and how it is stored locally.
type File struct {
	Name     Name
	FileName string         // FileName inside the cache directory; its extension selects the decoder.
	URL      string         // URL the file is downloaded from on first use.
	CRS      projection.CRS // CRS of the stored coordinates unless the file declares its own.
}

// DriveURL builds the direct download link of a shared Google Drive file.
func DriveURL(id string) string {
	query := url.Values{}
	query.Set("export", "download")
	query.Set("id", id)

	return driveDownloadURL + "?" + query.Encode()
}

// DefaultFiles returns the published registry files. Empty URLs fall back to the shared
// Google Drive copies, which are GeoParquet; a URL ending in a known extension keeps that
// format locally and anything else is stored as GeoParquet.
func DefaultFiles(regionsURL, depositsURL string) []File {
	if regionsURL == "" {
		regionsURL = DriveURL(regionsDriveID)
	}
	if depositsURL == "" {
		depositsURL = DriveURL(depositsDriveID)
	}

	return []File{
		{Name: Regions, FileName: fileName("Regiones_Chile", regionsURL), URL: regionsURL, CRS: projection.WGS84},
		{Name: Deposits, FileName: fileName("Relaves_Chile", depositsURL), URL: depositsURL, CRS: projection.WGS84},
	}
}

func fileName(base, rawURL string) string {
	ext := extParquet
	if u, err := url.Parse(rawURL); err == nil {
		switch candidate := strings.ToLower(path.Ext(u.Path)); candidate {
		case extGeoJSON, extJSON, extShapefile, extZip, extParquet:
			ext = candidate
		}
	}

	return base + ext
}
