// Package mocks holds gomock doubles for the session ports. Regenerate with
// `go generate ./internal/mocks` after changing internal/ports.
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockTokenStore(ctrl)
//	store.EXPECT().Load(gomock.Any()).Return("tok", nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/interview-ui/internal/ports TokenStore,TokenDecoder
