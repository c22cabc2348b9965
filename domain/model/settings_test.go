package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAPISettings(t *testing.T) {
	require.Equal(t, DefaultSettingsName, NewAPISettings(" ").Name)
	s := NewAPISettings("Channel A")
	require.Equal(t, "Channel A", s.Name)
	require.EqualValues(t, SettingsSingletonID, s.ID)
	require.False(t, s.HasClientSecrets())
}

func TestAPISettings_AssignClientSecrets(t *testing.T) {
	for _, mimeType := range []string{"text/plain", "application/octet-stream", "video/mp4", ""} {
		t.Run("rejects "+mimeType, func(t *testing.T) {
			s := NewAPISettings("")
			err := s.AssignClientSecrets(&Attachment{ID: "att-1", MimeType: mimeType})
			require.ErrorIs(t, err, ErrValidation)
			require.False(t, s.HasClientSecrets())
		})
	}

	t.Run("accepts json", func(t *testing.T) {
		s := NewAPISettings("")
		require.NoError(t, s.AssignClientSecrets(&Attachment{ID: "att-2", MimeType: ClientSecretsMimeType}))
		require.True(t, s.HasClientSecrets())
		require.Equal(t, "att-2", *s.ClientSecretsAttachmentID)
	})

	t.Run("nil attachment", func(t *testing.T) {
		require.ErrorIs(t, NewAPISettings("").AssignClientSecrets(nil), ErrValidation)
	})
}
