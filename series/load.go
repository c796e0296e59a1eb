package series

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/types"
)

// LoadDir reads every Part 10 file below dir and groups the image instances
// into series. Non-image instances, such as key object documents, are
// skipped. Series are returned sorted by UID.
func LoadDir(ctx context.Context, dir string) ([]*Series, error) {
	bySeries := make(map[string]*Series)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isDicomFile(path) {
			return nil
		}

		ds, err := dicom.ReadPart10File(path)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable DICOM file", "path", path, "error", err)
			return nil
		}
		sopClassUID := ds.GetString(dicom.TagSOPClassUID)
		if types.IsKeyObjectSOPClass(sopClassUID) {
			slog.DebugContext(ctx, "Skipping key object document file", "path", path)
			return nil
		}
		if sopClassUID != "" && !types.IsImageSOPClass(sopClassUID) {
			slog.DebugContext(ctx, "Skipping non-image instance",
				"path", path,
				"sop_class", types.GetSOPClassInfo(sopClassUID).Name)
			return nil
		}

		img, err := NewImage(ds)
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid image", "path", path, "error", err)
			return nil
		}
		s, ok := bySeries[img.SeriesInstanceUID]
		if !ok {
			s = New(img.SeriesInstanceUID)
			bySeries[img.SeriesInstanceUID] = s
		}
		s.Add(img)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load series from %s: %w", dir, err)
	}

	out := make([]*Series, 0, len(bySeries))
	for _, s := range bySeries {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Series) int { return strings.Compare(a.UID, b.UID) })

	slog.DebugContext(ctx, "Loaded series", "dir", dir, "series_count", len(out))
	return out, nil
}

func isDicomFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".dcm" || ext == ""
}
