package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
	mockauth "github.com/target/interview-ui/internal/mocks/auth"
)

type fakeAccountAPI struct {
	signIn    func(model.SignInRequest) (model.SignInResponse, error)
	signUpErr error
	signUps   []model.SignUpRequest
}

func (f *fakeAccountAPI) SignIn(_ context.Context, req model.SignInRequest) (model.SignInResponse, error) {
	return f.signIn(req)
}

func (f *fakeAccountAPI) SignUp(_ context.Context, req model.SignUpRequest) error {
	f.signUps = append(f.signUps, req)
	return f.signUpErr
}

func TestAuthService_SignInLogsSessionIn(t *testing.T) {
	api := &fakeAccountAPI{signIn: func(req model.SignInRequest) (model.SignInResponse, error) {
		assert.Equal(t, "hr@example.com", req.Email)
		return model.SignInResponse{
			AccessToken: "tok",
			User:        domainauth.Profile{ID: "u9", Email: req.Email, Role: domainauth.RoleHR},
		}, nil
	}}
	store := mockauth.NewMemoryTokenStore("")
	mgr := newManager(store)
	svc := NewAuthService(AuthServiceOptions{API: api})

	profile, err := svc.SignIn(context.Background(), mgr, model.SignInRequest{Email: " hr@example.com ", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleHR, profile.Role)
	assert.Equal(t, domainauth.StateAuthenticated, mgr.State())
	assert.Equal(t, "tok", store.Token())
	sess, _ := mgr.Current()
	assert.Equal(t, "u9", sess.Claims.Subject)
}

func TestAuthService_SignInRejected(t *testing.T) {
	rejected := errors.New("invalid credentials")
	api := &fakeAccountAPI{signIn: func(model.SignInRequest) (model.SignInResponse, error) {
		return model.SignInResponse{}, rejected
	}}
	store := mockauth.NewMemoryTokenStore("")
	mgr := newManager(store)
	svc := NewAuthService(AuthServiceOptions{API: api})

	_, err := svc.SignIn(context.Background(), mgr, model.SignInRequest{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, domainauth.StateAnonymous, mgr.State())
	assert.Equal(t, 0, store.Saves)

	_, err = svc.SignIn(context.Background(), mgr, model.SignInRequest{Email: "a@b.c"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SignIn(context.Background(), nil, model.SignInRequest{Email: "a@b.c", Password: "x"})
	assert.Error(t, err)
}

func TestAuthService_SignUp(t *testing.T) {
	api := &fakeAccountAPI{}
	svc := NewAuthService(AuthServiceOptions{API: api})

	err := svc.SignUp(context.Background(), model.SignUpRequest{Name: "", Email: "bad", Password: "123", Role: domainauth.RoleAdmin})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	fields := apperrors.FieldMessages(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.Empty(t, api.signUps, "backend is not contacted for invalid input")

	err = svc.SignUp(context.Background(), model.SignUpRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: domainauth.RoleStudent})
	require.NoError(t, err)
	require.Len(t, api.signUps, 1)

	api.signUpErr = errors.New("email taken")
	err = svc.SignUp(context.Background(), model.SignUpRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: domainauth.RoleHR})
	assert.ErrorIs(t, err, api.signUpErr)
}

func TestAuthService_SignOut(t *testing.T) {
	store := mockauth.NewMemoryTokenStore("")
	mgr := newManager(store)
	require.NoError(t, mgr.Login(context.Background(), "tok", domainauth.Profile{ID: "u", Role: domainauth.RoleStudent}))
	store.ClearErr = errors.New("io")

	NewAuthService(AuthServiceOptions{}).SignOut(context.Background(), mgr)
	assert.Equal(t, domainauth.StateAnonymous, mgr.State())

	NewAuthService(AuthServiceOptions{}).SignOut(context.Background(), nil)
}
