package main

import "brevets/internal/handler"

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func buildInfo() handler.BuildInfo {
	return handler.BuildInfo{Version: Version, Commit: Commit, BuildTime: BuildTime}
}
