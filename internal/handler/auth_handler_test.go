package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "ecomauth/internal/errors"
	"ecomauth/internal/model"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	args := m.Called(ctx, name, email, password)
	var user *model.User
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	return user, args.Bool(1), args.Error(2)
}

func (m *MockAuthService) VerifyAccount(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	args := m.Called(ctx, userID, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ResendOTP(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	var user *model.User
	if args.Get(1) != nil {
		user = args.Get(1).(*model.User)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) RecoverAccount(ctx context.Context, userID uuid.UUID, code, newPassword string) (string, error) {
	args := m.Called(ctx, userID, code, newPassword)
	return args.String(0), args.Error(1)
}

func post(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = newValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func newValidator() echo.Validator {
	return &structValidator{v: validator.New()}
}

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) Validate(i interface{}) error {
	return s.v.Struct(i)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		h := NewAuthHandler(new(MockAuthService))
		rec := post(t, h.Signup, `{"email":"a@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthService)
		u := &model.User{ID: uuid.New()}
		svc.On("Signup", mock.Anything, "A", "a@x.com", "p1").Return(u, true, nil)

		h := NewAuthHandler(svc)
		rec := post(t, h.Signup, `{"name":"A","email":"a@x.com","password":"p1"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, u.ID.String(), body["userId"])
		svc.AssertExpectations(t)
	})

	t.Run("existing unverified gets 200", func(t *testing.T) {
		svc := new(MockAuthService)
		u := &model.User{ID: uuid.New()}
		svc.On("Signup", mock.Anything, "A", "a@x.com", "p1").Return(u, false, nil)

		h := NewAuthHandler(svc)
		rec := post(t, h.Signup, `{"name":"A","email":"a@x.com","password":"p1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Contains(t, body["message"], "New OTP sent")
	})

	t.Run("already verified gets 209", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Signup", mock.Anything, "A", "a@x.com", "p1").Return(nil, false, apperrors.ErrEmailAlreadyVerified)

		h := NewAuthHandler(svc)
		rec := post(t, h.Signup, `{"name":"A","email":"a@x.com","password":"p1"}`)

		assert.Equal(t, StatusAlreadyVerified, rec.Code)
	})
}

func TestAuthHandler_VerifyAccount(t *testing.T) {
	id := uuid.New()

	t.Run("success returns token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyAccount", mock.Anything, id, "1234").Return("tok", nil)

		h := NewAuthHandler(svc)
		rec := post(t, h.VerifyAccount, `{"userId":"`+id.String()+`","otp":"1234"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "tok", body["token"])
	})

	t.Run("expired maps to 401", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyAccount", mock.Anything, id, "1234").Return("", apperrors.ErrOTPExpired)

		h := NewAuthHandler(svc)
		rec := post(t, h.VerifyAccount, `{"userId":"`+id.String()+`","otp":"1234"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid code maps to 402", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyAccount", mock.Anything, id, "1234").Return("", apperrors.ErrInvalidOTP)

		h := NewAuthHandler(svc)
		rec := post(t, h.VerifyAccount, `{"userId":"`+id.String()+`","otp":"1234"}`)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("malformed user id", func(t *testing.T) {
		h := NewAuthHandler(new(MockAuthService))
		rec := post(t, h.VerifyAccount, `{"userId":"not-a-uuid","otp":"1234"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyAccount", mock.Anything, id, "1234").Return("", apperrors.ErrUserNotFound)

		h := NewAuthHandler(svc)
		rec := post(t, h.VerifyAccount, `{"userId":"`+id.String()+`","otp":"1234"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("unverified gets 403 with userId", func(t *testing.T) {
		svc := new(MockAuthService)
		u := &model.User{ID: uuid.New()}
		svc.On("Login", mock.Anything, "a@x.com", "pw").Return("", u, apperrors.ErrEmailNotVerified)

		h := NewAuthHandler(svc)
		rec := post(t, h.Login, `{"email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, u.ID.String(), body["userId"])
	})

	t.Run("wrong password gets 401", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "a@x.com", "pw").Return("", nil, apperrors.ErrInvalidCredentials)

		h := NewAuthHandler(svc)
		rec := post(t, h.Login, `{"email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("success returns token", func(t *testing.T) {
		svc := new(MockAuthService)
		u := &model.User{ID: uuid.New()}
		svc.On("Login", mock.Anything, "a@x.com", "pw").Return("tok", u, nil)

		h := NewAuthHandler(svc)
		rec := post(t, h.Login, `{"email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "tok", body["token"])
	})
}

func TestAuthHandler_RecoverAccount(t *testing.T) {
	id := uuid.New()

	t.Run("invalid code maps to 401", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RecoverAccount", mock.Anything, id, "1234", "newpw").Return("", apperrors.ErrInvalidOTP)

		h := NewAuthHandler(svc)
		rec := post(t, h.RecoverAccount, `{"userId":"`+id.String()+`","otp":"1234","password":"newpw"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired maps to 402", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RecoverAccount", mock.Anything, id, "1234", "newpw").Return("", apperrors.ErrOTPExpired)

		h := NewAuthHandler(svc)
		rec := post(t, h.RecoverAccount, `{"userId":"`+id.String()+`","otp":"1234","password":"newpw"}`)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("success returns token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RecoverAccount", mock.Anything, id, "1234", "newpw").Return("tok", nil)

		h := NewAuthHandler(svc)
		rec := post(t, h.RecoverAccount, `{"userId":"`+id.String()+`","otp":"1234","password":"newpw"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "tok", body["token"])
	})
}
