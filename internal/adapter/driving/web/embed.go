package web

import "embed"

// StaticFS holds the embedded stylesheet and page scripts.
//
//go:embed static/*
var StaticFS embed.FS
