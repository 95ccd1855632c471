// Package buildinfo reports the cfkv build.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/cfkv/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not injected the module version recorded by the Go
// toolchain is used, so binaries built with go install still report a
// version. Get also lists the versions of the linked storage engines.
package buildinfo
