package locale

import (
	"testing"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		available []string
		want      string
		wantOK    bool
	}{
		{"exact match", "es", []string{"en", "es"}, "es", true},
		{"default fallback", "fr", []string{"en", "es"}, "en", true},
		{"lexicographic fallback", "de", []string{"fr", "es"}, "es", true},
		{"nothing available", "fr", []string{}, "", false},
		{"nil available", "en", nil, "", false},
		{"regional locale", "pt_BR", []string{"pt", "pt_BR"}, "pt_BR", true},
		{"order independent", "de", []string{"zh", "ja", "ko"}, "ja", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.requested, tt.available)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	available := []string{"zh", "fr", "es"}
	_, _ = Resolve("de", available)
	assert.Equal(t, []string{"zh", "fr", "es"}, available)
}

func TestResolveWithDefault(t *testing.T) {
	got, ok := ResolveWithDefault("it", "pt_BR", []string{"en", "pt_BR"})
	require.True(t, ok)
	assert.Equal(t, "pt_BR", got)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"", "en", false},
		{"  fr ", "fr", false},
		{"pt-BR", "pt_BR", false},
		{"zh_Hant", "zh_Hant", false},
		{"english", "", true},
		{"e", "", true},
		{"../etc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.CodeInvalidLocale))
				assert.Equal(t, Default, NormalizeOrDefault(tt.raw))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreferred(t *testing.T) {
	available := []string{"en", "es", "pt_BR"}

	assert.Equal(t, "es", Preferred("es-ES;q=0.9, fr;q=0.8", available))
	assert.Equal(t, "pt_BR", Preferred("pt-BR,pt;q=0.9", available))
	assert.Equal(t, "pt_BR", Preferred("pt", available))
	assert.Equal(t, "en", Preferred("de;q=0.9, en;q=0.5", available))
	assert.Equal(t, "", Preferred("de, *", available))
	assert.Equal(t, "", Preferred("", available))
	assert.Equal(t, "es", Preferred("fr;q=0, es;q=0.1", available))
	assert.Equal(t, "", Preferred("en;q=abc", available))
}
