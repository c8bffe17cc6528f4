//go:build tools

// Package tools lists the command-line tools used while developing the UI.
// They are installed with `go install` rather than required from go.mod.
//
//   - air (github.com/air-verse/air@v1.63.0) rebuilds and restarts the
//     server on change. Run it with DEV=true so templates are read from disk:
//     air --build.cmd "go build -o ./tmp/interview-ui ./cmd/interview-ui" --build.bin ./tmp/interview-ui
//   - mockgen (go.uber.org/mock/mockgen@v0.6.0) is run by
//     `go generate ./internal/mocks`; keep it in step with go.uber.org/mock in go.mod.
package tools
