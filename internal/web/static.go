package web

import (
	"embed"
)

// staticFiles holds the dashboard page served at /.
//
//go:embed static/*
var staticFiles embed.FS
