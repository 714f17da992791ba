// Package version reports the build version of scribe.
//
//	go build -ldflags "-X github.com/kbukum/scribe/version.Version=1.0.0"
package version
