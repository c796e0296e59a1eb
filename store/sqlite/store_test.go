package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caio-sobreiro/dicomko/dicom"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/series"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kosel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDocument(t *testing.T, uid string, opts ...keyobject.DocumentOption) *keyobject.Document {
	t.Helper()
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, "1.2.3")
	ds.AddElement(dicom.TagPatientName, dicom.VR_PN, "DOE^JANE")
	ds.AddElement(dicom.TagSeriesDescription, dicom.VR_LO, "description of "+uid)
	return keyobject.NewDocument(ds, opts...)
}

func TestStore_RegisterAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	doc := testDocument(t, "2.25.1",
		keyobject.WithSeriesUID("series-1"),
		keyobject.WithVersion(3),
		keyobject.WithCreatedAt(created),
		keyobject.WithReferences(keyobject.Reference{SOPInstanceUID: "I1", StudyInstanceUID: "1.2.3"}))
	require.NoError(t, s.Register(ctx, doc))
	require.NoError(t, s.Register(ctx, testDocument(t, "2.25.2", keyobject.WithSeriesUID("series-2"), keyobject.ReadOnly())))

	docs, err := s.ListForSeries(ctx, "series-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got := docs[0]
	require.Equal(t, "2.25.1", got.UID())
	require.Equal(t, "series-1", got.SeriesUID())
	require.Equal(t, uint64(3), got.Version())
	require.True(t, got.Editable())
	require.True(t, got.CreatedAt().Equal(created))
	require.Equal(t, []string{"I1"}, got.ReferencedSOPInstanceUIDs())
	require.Equal(t, "DOE^JANE", got.Attributes().GetString(dicom.TagPatientName))
	require.Equal(t, "description of 2.25.1", got.Description())

	other, err := s.Get(ctx, "2.25.2")
	require.NoError(t, err)
	require.False(t, other.Editable())

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestStore_SaveReferences(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := testDocument(t, "2.25.1", keyobject.WithSeriesUID("series-1"))
	require.NoError(t, s.Register(ctx, doc))

	img := testImage(t, "I7")
	require.True(t, doc.SetReference(img, true))
	require.NoError(t, s.SaveReferences(ctx, doc))

	stored, err := s.Get(ctx, "2.25.1")
	require.NoError(t, err)
	require.Equal(t, []string{"I7"}, stored.ReferencedSOPInstanceUIDs())
	require.Equal(t, []string{"1.2.3"}, stored.ReferencedStudyInstanceUIDs())

	require.True(t, doc.SetReference(img, false))
	require.NoError(t, s.SaveReferences(ctx, doc))
	stored, err = s.Get(ctx, "2.25.1")
	require.NoError(t, err)
	require.True(t, stored.IsEmpty())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Get(ctx, "missing")
	require.True(t, IsNotFound(err))

	err = s.SaveReferences(ctx, testDocument(t, "missing"))
	require.True(t, IsNotFound(err))

	require.True(t, IsNotFound(s.Delete(ctx, "missing")))
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := testDocument(t, "2.25.1", keyobject.WithSeriesUID("series-1"),
		keyobject.WithReferences(keyobject.Reference{SOPInstanceUID: "I1", StudyInstanceUID: "1.2.3"}))
	require.NoError(t, s.Register(ctx, doc))
	require.NoError(t, s.Delete(ctx, "2.25.1"))

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM document_references`).Scan(&n))
	require.Zero(t, n)
}

func TestStore_WithRegistry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kosel.db")

	s, err := Open(path)
	require.NoError(t, err)
	registry := keyobject.NewRegistry(keyobject.WithStore(s))
	doc, err := registry.Register(ctx, "series-1", testDocument(t, "2.25.9", keyobject.WithVersion(5)))
	require.NoError(t, err)
	require.True(t, doc.SetReference(testImage(t, "I1"), true))
	require.NoError(t, registry.SaveReferences(ctx, doc))
	require.NoError(t, s.Close())

	// A fresh registry on a reopened database sees the document
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	clock := keyobject.NewCounterClock()
	registry = keyobject.NewRegistry(keyobject.WithStore(s), keyobject.WithClock(clock))

	docs, err := registry.ForSeries(ctx, "series-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.True(t, docs[0].Contains("I1"))
	require.Equal(t, uint64(6), clock.Next())
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, Migrate(s.DB()))
	version, dirty, err := SchemaVersion(s.DB())
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

func testImage(t *testing.T, uid string) *series.Image {
	t.Helper()
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, uid)
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, "1.2.3")
	img, err := series.NewImage(ds)
	require.NoError(t, err)
	return img
}
