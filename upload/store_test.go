package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFolderPath(t *testing.T) {
	day := time.Date(2022, 5, 10, 14, 30, 0, 0, time.UTC)
	require.Equal(t, "2022/05/10", FolderPath(day))
}

func TestCleanFilename(t *testing.T) {

	name, err := CleanFilename("report.pdf")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)

	// folders are stripped, not rejected
	name, err = CleanFilename("../secret/report.pdf")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)

	name, err = CleanFilename("  report.pdf  ")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)

	_, err = CleanFilename("")
	require.Error(t, err)

	_, err = CleanFilename("   ")
	require.Error(t, err)

	_, err = CleanFilename(".")
	require.Error(t, err)
}
