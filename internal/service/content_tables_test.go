package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
)

func ptr[T any](value T) *T {
	return &value
}

func TestSlugifyTransliterates(t *testing.T) {
	require.Equal(t, "masjid-tayyibah", slugify("Masjid Ṭayyibah"))
	require.Equal(t, "laporan-wakaf-2024", slugify("  Laporan Wakaf 2024! "))
	require.Empty(t, slugify("  ---  "))
	require.LessOrEqual(t, len(slugify(strings.Repeat("wakaf produktif ", 30))), maxSlugLength)
}

func TestSanitizeFileNameKeepsExtension(t *testing.T) {
	require.Equal(t, "foto-masjid.png", sanitizeFileName("Foto Masjid.PNG"))
	require.Equal(t, "foto-tayyibah.jpg", sanitizeFileName("../Foto Ṭayyibah.JPG"))
	require.Equal(t, "upload.bin", sanitizeFileName("???"))
}

func TestBuildersReturnAppliedFields(t *testing.T) {
	facility, err := buildFacility(dto.FacilityRequest{Name: ptr("Masjid"), Description: ptr("Masjid jami"), SortOrder: ptr(3)})
	require.NoError(t, err)
	require.Equal(t, "Masjid jami", facility.Description)
	require.Equal(t, 3, facility.SortOrder)

	section, err := buildProfileSection(dto.ProfileSectionRequest{Key: ptr("Visi Misi"), Title: ptr("Visi"), Body: ptr("<p>Isi</p>")})
	require.NoError(t, err)
	require.Equal(t, "visi-misi", section.Key)
	require.Equal(t, "<p>Isi</p>", section.Body)

	program, err := buildProgram(dto.ProgramRequest{Name: ptr("Santunan"), Description: ptr("Bulanan")})
	require.NoError(t, err)
	require.Equal(t, "Bulanan", program.Description)
	require.True(t, program.IsActive)
}
