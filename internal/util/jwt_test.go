package util

import (
	"testing"
	"time"

	"edupath_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters!!"

func TestJWTCarriesStudentIdentity(t *testing.T) {
	user := &model.User{
		Role:            model.Student,
		Email:           "s1@example.com",
		StudentUniqueID: "S1",
	}
	user.ID = 42

	token, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	// 学生标识随登录态下发，后续请求一律以此为准
	assert.Equal(t, "S1", claims.StudentID)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Role: model.Student, StudentUniqueID: "S1"}

	token, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "another-secret-also-32-characters!!!")
	assert.Error(t, err)
}
