package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/testutils"
)

func TestStorageKey(t *testing.T) {
	withPath := &entities.Report{StoragePath: "ward_demographics/en/report.xlsx", Dataset: "x"}
	assert.Equal(t, "ward_demographics/en/report.xlsx", StorageKey(withPath))

	derived := &entities.Report{Dataset: "irrigation_sources", Locale: "ne", FileName: "sources.xlsx"}
	assert.Equal(t, "irrigation_sources/ne/sources.xlsx", StorageKey(derived))
}

func TestMinioReportStorage(t *testing.T) {
	report := &entities.Report{ID: "r1", Dataset: "religion_population", Locale: "en", FileName: "r1.xlsx", FileSize: 4}
	ctx := context.Background()

	t.Run("upload uses the report key and content type", func(t *testing.T) {
		s := &testutils.MockStorage{}
		s.On("Upload", mock.Anything, "profile-reports", "religion_population/en/r1.xlsx", mock.Anything, int64(4), entities.ReportContentType).Return(nil)

		rs := NewMinioReportStorage(s, "profile-reports", logger.Nop())
		require.NoError(t, rs.UploadReport(ctx, report, strings.NewReader("xlsx")))
		s.AssertExpectations(t)
	})

	t.Run("upload failure is wrapped", func(t *testing.T) {
		s := &testutils.MockStorage{}
		s.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

		err := NewMinioReportStorage(s, "profile-reports", logger.Nop()).UploadReport(ctx, report, strings.NewReader("xlsx"))
		assert.ErrorContains(t, err, "failed to upload report")
	})

	t.Run("download and delete", func(t *testing.T) {
		s := &testutils.MockStorage{}
		s.On("Download", mock.Anything, "profile-reports", "religion_population/en/r1.xlsx").Return(io.NopCloser(strings.NewReader("xlsx")), nil)
		s.On("Delete", mock.Anything, "profile-reports", "religion_population/en/r1.xlsx").Return(nil)
		rs := NewMinioReportStorage(s, "profile-reports", logger.Nop())

		rc, err := rs.DownloadReport(ctx, report)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "xlsx", string(data))

		require.NoError(t, rs.DeleteReport(ctx, report))
		s.AssertExpectations(t)
	})
}
