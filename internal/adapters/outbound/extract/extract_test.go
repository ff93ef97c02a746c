package extract_test

import (
	"errors"
	"testing"

	"github.com/complyai/comply/internal/adapters/outbound/extract"
	"github.com/complyai/comply/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     string
	}{
		{"txt", "policy.txt", "We ask for explicit consent.", "We ask for explicit consent."},
		{"markdown upper-case ext", "POLICY.MD", "# Données", "# Données"},
		{"bom stripped", "policy.txt", "\xef\xbb\xbfHello", "Hello"},
		{"empty", "empty.txt", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.New().Extract(tt.filename, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := extract.New().Extract("policy.txt", []byte{0xff, 0xfe, 0x00, 'a'})
	require.Error(t, err)
	assert.Equal(t, domain.KindInput, domain.KindOf(err))
	assert.False(t, errors.Is(err, domain.ErrUnsupportedFile))
}

func TestExtract_Unsupported(t *testing.T) {
	for _, name := range []string{"policy.docx", "policy", "image.png"} {
		_, err := extract.New().Extract(name, []byte("data"))
		require.Error(t, err, name)
		assert.Equal(t, domain.KindInput, domain.KindOf(err))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
	}
}

func TestExtract_MalformedPDF(t *testing.T) {
	_, err := extract.New().Extract("policy.pdf", []byte("this is not a pdf"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInput, domain.KindOf(err))
	assert.False(t, errors.Is(err, domain.ErrUnsupportedFile))
}
