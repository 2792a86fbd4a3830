package mailer

import (
	"testing"

	"auth_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMailVerify(t *testing.T) {
	subject, body, err := BuildMail(models.MailMessage{
		Email:   "alice@x.com",
		Name:    "Alice",
		Link:    "https://app.test/verify-email/tok123",
		Purpose: models.MailPurposeVerifyEmail,
	})
	require.NoError(t, err)

	assert.Equal(t, "Verify your email", subject)
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "https://app.test/verify-email/tok123")
}

func TestBuildMailReset(t *testing.T) {
	subject, body, err := BuildMail(models.MailMessage{
		Email:   "alice@x.com",
		Name:    "Alice",
		Link:    "https://app.test/reset-password/tok456",
		Purpose: models.MailPurposePasswordReset,
	})
	require.NoError(t, err)

	assert.Equal(t, "Password reset", subject)
	assert.Contains(t, body, "expires in 10 minutes")
	assert.Contains(t, body, "https://app.test/reset-password/tok456")
}

func TestBuildMailEscapesName(t *testing.T) {
	_, body, err := BuildMail(models.MailMessage{
		Name:    "<script>alert(1)</script>",
		Link:    "https://app.test/verify-email/tok",
		Purpose: models.MailPurposeVerifyEmail,
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestBuildMailUnknownPurpose(t *testing.T) {
	_, _, err := BuildMail(models.MailMessage{Purpose: "spam"})
	assert.Error(t, err)
}
